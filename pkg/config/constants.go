package config

// EnvPrefix is the envconfig prefix shared by every POUSADA_* variable.
const EnvPrefix = "pousada"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvDBDSN  = "POUSADA_DB_DSN"
	EnvDBHost = "POUSADA_DB_HOST"
	EnvDBUser = "POUSADA_DB_USER"
	EnvDBName = "POUSADA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

// Unknown-partner policies for the ordering context resolver. See
// ResolverConfig.UnknownPartnerPolicy.
const (
	UnknownPartnerHalt        = "halt"
	UnknownPartnerFallthrough = "fallthrough"
)

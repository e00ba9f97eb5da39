package config

// DefaultConfigFile is read from the working directory when no --config is given
const DefaultConfigFile = "appcheck.toml"

// Environment overrides
const (
	EnvOutputDir      = "APPCHECK_OUTPUT_DIR"
	EnvCatalog        = "APPCHECK_CATALOG"
	EnvTemplate       = "APPCHECK_TEMPLATE"
	EnvLookupURL      = "APPCHECK_LOOKUP_URL"
	EnvStrictLookup   = "APPCHECK_STRICT_LOOKUP"
	EnvRedirectBase   = "APPCHECK_REDIRECT_BASE"
	EnvManifestReader = "APPCHECK_MANIFEST_READER"
)

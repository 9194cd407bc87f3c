// Package config loads the fixturegen configuration from environment
// variables.
//
//	cfg, err := config.Load()
//	if err == nil {
//	    err = cfg.Validate()
//	}
//
// # Environment Variables
//
//	FACTORY_STORE_DRIVER      - memory, sqlite, postgres or surreal (default: memory)
//	FACTORY_SQLITE_PATH       - sqlite database file (default: fixtures.db)
//	FACTORY_POSTGRES_DSN      - postgres connection string
//	FACTORY_SURREAL_HOST      - SurrealDB host (default: localhost)
//	FACTORY_SURREAL_PORT      - SurrealDB port (default: 8000)
//	FACTORY_SURREAL_NAMESPACE - SurrealDB namespace (default: fixtures)
//	FACTORY_LOG_LEVEL         - debug, info, warn or error (default: info)
//	FACTORY_LOG_FORMAT        - json or text (default: json)
//	FACTORY_EXPORT_FORMAT     - json or yaml (default: json)
//	FACTORY_S3_REGION         - region for s3:// outputs (default: us-east-1)
//	FACTORY_PUSHGATEWAY_URL   - push run metrics here when set
//	FACTORY_SEED              - fake data seed, 0 for random
//	FACTORY_OP_TIMEOUT        - bound on one run (default: 30s)
//
// Validate reports every problem at once through errors.Join.
package config

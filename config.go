package recipebox

import "time"

// CatalogConfig configures the recipe API client and the catalog filter engine.
type CatalogConfig struct {
	MealDBBaseURL     string        `env:"MEALDB_BASE_URL,default=https://www.themealdb.com/api/json/v1/1"`
	RequestTimeout    time.Duration `env:"MEALDB_REQUEST_TIMEOUT,default=10s"`
	BaselineAreas     []string      `env:"CATALOG_BASELINE_AREAS,default=American;Italian;Indian"`
	PageSize          int           `env:"CATALOG_PAGE_SIZE,default=12"`
	WishlistPageSize  int           `env:"WISHLIST_PAGE_SIZE,default=4"`
	DetailConcurrency int           `env:"CATALOG_DETAIL_CONCURRENCY,default=1"`
	FilterLogPath     string        `env:"CATALOG_FILTER_LOG_PATH"`
}

// StoreConfig selects and configures the persistence backend for the cart, wishlist and auth stores.
type StoreConfig struct {
	Backend        string `env:"STORE_BACKEND,default=file"`
	Dir            string `env:"STORE_DIR,default=data"`
	S3Bucket       string `env:"STORE_S3_BUCKET"`
	S3Prefix       string `env:"STORE_S3_PREFIX,default=recipebox/"`
	RedisAddr      string `env:"STORE_REDIS_ADDR,default=localhost:6379"`
	RedisPassword  string `env:"STORE_REDIS_PASSWORD"`
	RedisPrefix    string `env:"STORE_REDIS_PREFIX,default=recipebox:"`
	SQLDSN         string `env:"STORE_SQL_DSN,default=data/recipebox.db"`
	UnitPriceCents int64  `env:"CART_UNIT_PRICE_CENTS,default=1000"`
	HashPasswords  bool   `env:"AUTH_HASH_PASSWORDS,default=false"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr             string   `env:"SERVER_ADDR,default=:8080"`
	AllowedOrigins   []string `env:"SERVER_ALLOWED_ORIGINS,default=http://localhost:3000"`
	TelemetryEnabled bool     `env:"TELEMETRY_ENABLED,default=false"`
	SlackWebhookURL  string   `env:"SLACK_WEBHOOK_URL"`
	SlackChannel     string   `env:"SLACK_CHANNEL,default=#recipes"`
	DebugDump        bool     `env:"DEBUG_DUMP,default=false"`
}

package config

import "os"

type Config struct {
	Addr           string
	DatabaseURL    string
	JWTSecret      string
	MigrationsPath string
	MailFrom       string
}

// Load reads configuration from the environment. Only DATABASE_URL and
// JWT_SECRET have no usable default.
func Load() Config {
	return Config{
		Addr:           getenv("SHOP_ADDR", ":8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		MigrationsPath: getenv("MIGRATIONS_PATH", "./db/migrations"),
		MailFrom:       getenv("MAIL_FROM", "noreply@shop.local"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string
	RedisURL            string
	ExcelInventoryPath  string // canonical workbook the stock ledger mirrors into
	ExcelExportFilename string // filename served for snapshot downloads
	ImportStorageDir    string // where bulk upload files are kept
	OverduePurgeDays    int    // unpaid sales older than this are swept and their reservation released
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = viper.GetString("DATABASE_URL")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}

	purgeDays := viper.GetInt("OVERDUE_PURGE_DAYS")
	if purgeDays <= 0 {
		purgeDays = 60
	}

	return &Config{
		Env:                 env,
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		ExcelInventoryPath:  withDefault(viper.GetString("EXCEL_INVENTORY_PATH"), "storage/inventory.xlsx"),
		ExcelExportFilename: withDefault(viper.GetString("EXCEL_EXPORT_FILENAME"), "inventory_snapshot.xlsx"),
		ImportStorageDir:    withDefault(viper.GetString("IMPORT_STORAGE_DIR"), "storage/imports"),
		OverduePurgeDays:    purgeDays,
	}, nil
}

func withDefault(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

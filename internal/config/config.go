package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	ServerPort string

	StoreDriver string
	SQLitePath  string
	DBHost      string
	DBPort      int
	DBUser      string
	DBPassword  string
	DBName      string
	DBSslMode   string

	// Used when the store is empty on first start.
	DefaultDailyMax decimal.Decimal

	AdminUsername    string
	AdminPassword    string
	OperatorUsername string
	OperatorPassword string

	JWTSecret          string
	JWTExpirationHours time.Duration

	AWSRegion          string
	SQSGateQueueURL    string
	IoTMQTTEndpoint    string
	IoTGateTopicPrefix string
	LPREnabled         bool

	RabbitMQURL      string
	RabbitMQExchange string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Config: could not load .env file: %v", err)
	}

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	jwtExpHours, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	lprEnabled, _ := strconv.ParseBool(getEnv("LPR_ENABLED", "false"))

	dailyMax, err := decimal.NewFromString(getEnv("DEFAULT_DAILY_MAX", "50"))
	if err != nil || dailyMax.IsNegative() {
		log.Printf("Config: invalid DEFAULT_DAILY_MAX, using 50")
		dailyMax = decimal.NewFromInt(50)
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		StoreDriver: getEnv("STORE_DRIVER", StoreSQLite),
		SQLitePath:  getEnv("SQLITE_PATH", "parking.db"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      dbPort,
		DBUser:      getEnv("DB_USER", "parking"),
		DBPassword:  getEnv("DB_PASSWORD", "parking"),
		DBName:      getEnv("DB_NAME", "parking_db"),
		DBSslMode:   getEnv("DB_SSLMODE", "disable"),

		DefaultDailyMax: dailyMax,

		AdminUsername:    getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:    getEnv("ADMIN_PASSWORD", ""),
		OperatorUsername: getEnv("OPERATOR_USERNAME", ""),
		OperatorPassword: getEnv("OPERATOR_PASSWORD", ""),

		JWTSecret:          getEnv("JWT_SECRET", "change-me-parking-jwt-secret"),
		JWTExpirationHours: time.Duration(jwtExpHours) * time.Hour,

		AWSRegion:          getEnv("AWS_REGION", "ap-southeast-1"),
		SQSGateQueueURL:    getEnv("SQS_GATE_QUEUE_URL", ""),
		IoTMQTTEndpoint:    getEnv("IOT_MQTT_ENDPOINT", ""),
		IoTGateTopicPrefix: getEnv("IOT_GATE_TOPIC_PREFIX", "parking/gates"),
		LPREnabled:         lprEnabled,

		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "parking.events"),
	}
}

// AWSEnabled reports whether any AWS-backed component is configured.
func (c *Config) AWSEnabled() bool {
	return c.SQSGateQueueURL != "" || c.IoTMQTTEndpoint != "" || c.LPREnabled
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Config: %s not set, using default %q", key, fallback)
	return fallback
}

package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	DatabaseDSN  string
	AccessSecret string
	BaseURL      string

	KafkaBroker   string
	KafkaTopic    string
	KafkaGroupID  string
	KafkaUsername string
	KafkaPassword string

	GmailUser        string
	GmailAppPassword string
	MailFrom         string
	MailFromName     string
	MailSubject      string
	ResetBaseURL     string
}

func LoadConfig() Config {
	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Overload(); err != nil {
			log.Println("Warning: .env not loaded:", err)
		}
	}

	return Config{
		ServerPort:   getEnv("SERVER_PORT", ":3000"),
		DatabaseDSN:  os.Getenv("DATABASE_DSN"),
		AccessSecret: os.Getenv("ACCESS_SECRET"),
		BaseURL:      getEnv("BASE_URL", "*"),

		KafkaBroker:   os.Getenv("KAFKA_BROKER"),
		KafkaTopic:    os.Getenv("KAFKA_TOPIC"),
		KafkaGroupID:  os.Getenv("KAFKA_GROUP_ID"),
		KafkaUsername: os.Getenv("KAFKA_USERNAME"),
		KafkaPassword: os.Getenv("KAFKA_PASSWORD"),

		GmailUser:        os.Getenv("GMAIL_USER"),
		GmailAppPassword: os.Getenv("GMAIL_APP_PASSWORD"),
		MailFrom:         os.Getenv("MAIL_FROM"),
		MailFromName:     getEnv("MAIL_FROM_NAME", "MediExpress"),
		MailSubject:      getEnv("MAIL_SUBJECT", "Reset your MediExpress password"),
		ResetBaseURL:     os.Getenv("RESET_BASE_URL"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

var (
	Port          string
	MongoURI      string
	DatabaseName  string
	JWTKey        []byte
	JWTExpiration time.Duration

	// SMTP settings for OTP and notification mail
	EmailUser string
	EmailPass string
	SMTPHost  string
	SMTPPort  int
)

func LoadConfig() {
	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "8080"
	}

	// MONGODB_URI takes priority, MONGO_URI kept for older deployments
	MongoURI = os.Getenv("MONGODB_URI")
	if MongoURI == "" {
		MongoURI = os.Getenv("MONGO_URI")
	}
	if MongoURI == "" {
		MongoURI = "mongodb://localhost:27017"
	}

	DatabaseName = os.Getenv("MONGO_DB")
	if DatabaseName == "" {
		DatabaseName = "crmhub"
	}

	JWTKey = []byte(os.Getenv("JWT_SECRET"))
	if len(JWTKey) == 0 {
		JWTKey = []byte("secret")
	}

	expireStr := os.Getenv("JWT_EXPIRE")
	dur := 7 * 24 * time.Hour
	if expireStr != "" {
		if expireStr == "7d" {
			dur = 7 * 24 * time.Hour
		} else {
			var err error
			dur, err = time.ParseDuration(expireStr)
			if err != nil {
				log.Printf("Invalid JWT_EXPIRE: %s, using 7d", expireStr)
				dur = 7 * 24 * time.Hour
			}
		}
	}
	JWTExpiration = dur

	EmailUser = os.Getenv("EMAIL_USER")
	EmailPass = os.Getenv("EMAIL_PASS")

	SMTPHost = os.Getenv("SMTP_HOST")
	if SMTPHost == "" {
		SMTPHost = "smtp.gmail.com"
	}

	SMTPPort = 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil && p > 0 {
			SMTPPort = p
		}
	}
}

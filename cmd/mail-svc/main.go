package main

import (
	"log"

	"github.com/MediExpress/auth_service/config"
	"github.com/MediExpress/auth_service/infra/queue"
	"github.com/MediExpress/auth_service/internal/api/rest/handlers"
	"github.com/MediExpress/auth_service/internal/services"
)

func main() {
	cfg := config.LoadConfig()

	log.Println("Mail Service starting...")
	log.Printf("KafkaBroker=%s Topic=%s GroupID=%s\n",
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaGroupID,
	)

	mailService := services.NewMailService(
		cfg.GmailUser,
		cfg.GmailAppPassword,
		cfg.MailFrom,
		cfg.MailFromName,
		cfg.MailSubject,
		cfg.ResetBaseURL,
	)

	handler := handlers.NewMailHandler(mailService)

	consumer := queue.NewKafkaConsumer(
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaGroupID,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
		handler,
	)

	log.Println("Mail Service listening for events...")
	consumer.Listen()
}

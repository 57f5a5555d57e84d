package main

import (
	"github.com/MediExpress/auth_service/config"
	"github.com/MediExpress/auth_service/internal/api"
)

func main() {
	cfg := config.LoadConfig()
	api.StartServer(cfg)
}

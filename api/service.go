package api

import (
	"log"
	"net/http"

	"ArmeriaCorpAdmin/internal/config"
)

type GatewayService struct {
	config map[string]interface{}
}

func NewGatewayService(cfg map[string]interface{}) *GatewayService {
	return &GatewayService{config: cfg}
}

func (s *GatewayService) Name() string { return "gateway" }

func (s *GatewayService) Start() error {
	port := config.GatewayPort
	if p, ok := s.config["port"].(string); ok && p != "" {
		port = p
	}
	go func() {
		log.Println("Gateway started on", port)
		if err := http.ListenAndServe(port, NewRouter()); err != nil {
			log.Fatalf("Gateway failed: %v", err)
		}
	}()
	return nil
}

func (s *GatewayService) Stop() error {
	return nil
}

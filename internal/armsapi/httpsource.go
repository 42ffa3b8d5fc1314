package armsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ArmeriaCorpAdmin/pkg/loadbalancer"
)

// HTTPSource talks to the legacy upstream backend over its JSON REST API.
// Base URLs are explicit configuration, never read from ambient globals;
// when more than one replica is configured requests rotate between them.
type HTTPSource struct {
	lb     *loadbalancer.LoadBalancer
	client *http.Client
}

func NewHTTPSource(baseURLs []string, timeout time.Duration) (*HTTPSource, error) {
	if len(baseURLs) == 0 {
		return nil, fmt.Errorf("at least one base URL is required")
	}
	for _, u := range baseURLs {
		if _, err := url.Parse(u); err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", u, err)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		lb:     loadbalancer.NewLoadBalancer(baseURLs),
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, path string, out interface{}) error {
	base := s.lb.GetNextServer()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: upstream returned %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}

func (s *HTTPSource) ListClients(ctx context.Context) ([]Client, error) {
	var clients []Client
	if err := s.getJSON(ctx, "/api/clients", &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *HTTPSource) ListPaymentsForClient(ctx context.Context, clientID string) ([]Payment, error) {
	var payments []Payment
	path := "/api/clients/" + url.PathEscape(clientID) + "/payments"
	if err := s.getJSON(ctx, path, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *HTTPSource) ListInstallmentsForPayment(ctx context.Context, paymentID string) ([]Installment, error) {
	var installments []Installment
	path := "/api/payments/" + url.PathEscape(paymentID) + "/installments"
	if err := s.getJSON(ctx, path, &installments); err != nil {
		return nil, err
	}
	return installments, nil
}

func (s *HTTPSource) ListWeaponAssignmentsForClient(ctx context.Context, clientID string) ([]WeaponAssignment, error) {
	var assignments []WeaponAssignment
	path := "/api/clients/" + url.PathEscape(clientID) + "/weapons"
	if err := s.getJSON(ctx, path, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (s *HTTPSource) GetSystemConfig(ctx context.Context) (SystemConfig, error) {
	var cfg SystemConfig
	if err := s.getJSON(ctx, "/api/config", &cfg); err != nil {
		return SystemConfig{}, err
	}
	return cfg, nil
}

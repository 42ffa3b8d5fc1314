package resource

import (
	"sync"
	"time"

	"ArmeriaCorpAdmin/internal/logger"
)

// ResourceManager keeps a registry of shared runtime resources (db
// pools, session registries) and logs a heartbeat with their state.
type ResourceManager struct {
	resources         map[string]interface{}
	mu                sync.RWMutex
	stopChan          chan struct{}
	heartbeatInterval time.Duration
}

func NewResourceManagerService(cfg map[string]interface{}) *ResourceManager {
	interval := 5 * time.Second
	if val, ok := cfg["heartbeat_interval"]; ok {
		switch v := val.(type) {
		case string:
			if d, err := time.ParseDuration(v); err == nil {
				interval = d
			}
		case float64:
			interval = time.Duration(v) * time.Second
		case int:
			interval = time.Duration(v) * time.Second
		}
	}
	return &ResourceManager{
		resources:         make(map[string]interface{}),
		stopChan:          make(chan struct{}),
		heartbeatInterval: interval,
	}
}

func (rm *ResourceManager) Name() string { return "resourcemanager" }

func (rm *ResourceManager) Start() error {
	go rm.heartbeat()
	logger.Audit("ResourceManager started")
	return nil
}

func (rm *ResourceManager) Stop() error {
	close(rm.stopChan)
	return nil
}

func (rm *ResourceManager) Register(name string, resource interface{}) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.resources[name] = resource
}

func (rm *ResourceManager) Get(name string) (interface{}, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	r, ok := rm.resources[name]
	return r, ok
}

func (rm *ResourceManager) heartbeat() {
	ticker := time.NewTicker(rm.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rm.stopChan:
			return
		case <-ticker.C:
			rm.mu.RLock()
			names := make([]string, 0, len(rm.resources))
			for name := range rm.resources {
				names = append(names, name)
			}
			rm.mu.RUnlock()
			logger.Audit("heartbeat: %d resources registered %v", len(names), names)
		}
	}
}

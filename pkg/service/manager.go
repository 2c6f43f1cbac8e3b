// Package service starts and stops the auxiliary services of a broadcast in
// priority order.
package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/small-frappuccino/richpresence/pkg/log"
)

// ServiceState represents the current state of a service
type ServiceState string

const (
	StateRegistered ServiceState = "registered"
	StateRunning    ServiceState = "running"
	StateStopped    ServiceState = "stopped"
	StateError      ServiceState = "error"
)

// ServicePriority determines startup/shutdown order (higher number starts first, stops last)
type ServicePriority int

const (
	PriorityLow    ServicePriority = 1
	PriorityNormal ServicePriority = 5
	PriorityHigh   ServicePriority = 10
)

// Service is a component with a start/stop lifecycle.
type Service interface {
	Name() string
	Priority() ServicePriority
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// ServiceWrapper adapts a pair of functions to Service.
type ServiceWrapper struct {
	name     string
	priority ServicePriority
	start    func(ctx context.Context) error
	stop     func(ctx context.Context) error
}

// NewServiceWrapper creates a Service from start and stop functions. Either may be nil.
func NewServiceWrapper(name string, priority ServicePriority, start, stop func(ctx context.Context) error) *ServiceWrapper {
	return &ServiceWrapper{name: name, priority: priority, start: start, stop: stop}
}

func (w *ServiceWrapper) Name() string              { return w.name }
func (w *ServiceWrapper) Priority() ServicePriority { return w.priority }

func (w *ServiceWrapper) Start(ctx context.Context) error {
	if w.start == nil {
		return nil
	}
	return w.start(ctx)
}

func (w *ServiceWrapper) Stop(ctx context.Context) error {
	if w.stop == nil {
		return nil
	}
	return w.stop(ctx)
}

type serviceInfo struct {
	service Service
	state   ServiceState
	order   int
}

// ServiceManager coordinates the lifecycle of registered services.
type ServiceManager struct {
	mu       sync.Mutex
	services map[string]*serviceInfo
	started  []string

	shutdownTimeout time.Duration
}

// NewServiceManager creates an empty manager.
func NewServiceManager() *ServiceManager {
	return &ServiceManager{
		services:        make(map[string]*serviceInfo),
		shutdownTimeout: 10 * time.Second,
	}
}

// Register adds a service to the manager.
func (sm *ServiceManager) Register(s Service) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	name := s.Name()
	if _, exists := sm.services[name]; exists {
		return fmt.Errorf("service '%s' is already registered", name)
	}
	sm.services[name] = &serviceInfo{service: s, state: StateRegistered, order: len(sm.services)}
	log.ApplicationLogger().Debug("Service registered", "service", name, "priority", s.Priority())
	return nil
}

// StartAll starts every service, highest priority first. If one fails, the
// ones already started are stopped and the error returned.
func (sm *ServiceManager) StartAll(ctx context.Context) error {
	for _, info := range sm.startOrder() {
		name := info.service.Name()
		if err := info.service.Start(ctx); err != nil {
			sm.setState(info, StateError)
			log.ErrorLoggerRaw().Error("Service failed to start", "service", name, "err", err)
			if stopErr := sm.StopAll(); stopErr != nil {
				return stderrors.Join(fmt.Errorf("start service '%s': %w", name, err), stopErr)
			}
			return fmt.Errorf("start service '%s': %w", name, err)
		}
		sm.mu.Lock()
		info.state = StateRunning
		sm.started = append(sm.started, name)
		sm.mu.Unlock()
		log.ApplicationLogger().Info("Service started", "service", name)
	}
	return nil
}

// StopAll stops the running services in reverse start order.
func (sm *ServiceManager) StopAll() error {
	sm.mu.Lock()
	started := sm.started
	sm.started = nil
	sm.mu.Unlock()

	var errs []error
	for i := len(started) - 1; i >= 0; i-- {
		name := started[i]
		sm.mu.Lock()
		info := sm.services[name]
		sm.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), sm.shutdownTimeout)
		err := info.service.Stop(ctx)
		cancel()
		if err != nil {
			sm.setState(info, StateError)
			errs = append(errs, fmt.Errorf("stop service '%s': %w", name, err))
			continue
		}
		sm.setState(info, StateStopped)
		log.ApplicationLogger().Info("Service stopped", "service", name)
	}
	if len(errs) > 0 {
		log.ErrorLoggerRaw().Error("Some services failed to stop cleanly", "err", stderrors.Join(errs...))
	}
	return stderrors.Join(errs...)
}

// State returns the state of a registered service.
func (sm *ServiceManager) State(name string) (ServiceState, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	info, ok := sm.services[name]
	if !ok {
		return "", false
	}
	return info.state, true
}

func (sm *ServiceManager) startOrder() []*serviceInfo {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	out := make([]*serviceInfo, 0, len(sm.services))
	for _, info := range sm.services {
		if info.state != StateRunning {
			out = append(out, info)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].service.Priority() != out[j].service.Priority() {
			return out[i].service.Priority() > out[j].service.Priority()
		}
		return out[i].order < out[j].order
	})
	return out
}

func (sm *ServiceManager) setState(info *serviceInfo, state ServiceState) {
	sm.mu.Lock()
	info.state = state
	sm.mu.Unlock()
}

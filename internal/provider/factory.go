package provider

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-aggregator/internal/config"
)

// Provider name constants, matching the names accepted in configuration.
const (
	PrimaryOddsProviderName = primaryName
	SportsDataProviderName  = sportsDataName
	ScoreboardProviderName  = scoreboardName
	ArbitrageProviderName   = arbitrageName
)

// Factory creates Provider implementations from configuration. Each
// provider receives its own HTTP client so rate limits and circuit
// breakers stay independent.
type Factory struct {
	httpCfg config.HTTPConfig
	logger  *logrus.Logger
}

// NewFactory creates a new provider factory
func NewFactory(httpCfg config.HTTPConfig, logger *logrus.Logger) *Factory {
	return &Factory{httpCfg: httpCfg, logger: logger}
}

// New creates a Provider from the given provider configuration.
func (f *Factory) New(cfg config.ProviderConfig) (Provider, error) {
	httpClient := NewRateLimitedHTTPClient(f.clientConfig(cfg), f.logger)

	switch cfg.Name {
	case primaryName:
		return NewPrimaryOddsClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.Enabled, f.logger)
	case sportsDataName:
		return NewSportsDataClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.Enabled, f.logger)
	case scoreboardName:
		return NewScoreboardClient(httpClient, cfg.BaseURL, cfg.Enabled, f.logger), nil
	case arbitrageName:
		return NewArbitrageClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.Enabled, f.logger)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Name)
	}
}

// NewAll creates every configured provider. A provider that fails to
// construct (e.g. missing credential) is returned as an error entry; the
// remaining providers are still built.
func (f *Factory) NewAll(cfgs []config.ProviderConfig) ([]Provider, []error) {
	providers := make([]Provider, 0, len(cfgs))
	var errs []error
	for _, cfg := range cfgs {
		p, err := f.New(cfg)
		if err != nil {
			errs = append(errs, fmt.Errorf("provider %s: %w", cfg.Name, err))
			continue
		}
		providers = append(providers, p)
	}
	return providers, errs
}

func (f *Factory) clientConfig(cfg config.ProviderConfig) HTTPClientConfig {
	clientCfg := DefaultHTTPClientConfig()
	if f.httpCfg.TimeoutSeconds > 0 {
		clientCfg.Timeout = time.Duration(f.httpCfg.TimeoutSeconds) * time.Second
	}
	if f.httpCfg.MaxRetries > 0 {
		clientCfg.MaxRetries = f.httpCfg.MaxRetries
	}
	if f.httpCfg.RetryBaseWaitMS > 0 {
		clientCfg.RetryBaseWait = time.Duration(f.httpCfg.RetryBaseWaitMS) * time.Millisecond
	}
	if f.httpCfg.CircuitBreakerMax > 0 {
		clientCfg.CircuitBreakerMax = f.httpCfg.CircuitBreakerMax
	}
	if cfg.RateLimit > 0 {
		clientCfg.RateLimit = cfg.RateLimit
	}
	return clientCfg
}

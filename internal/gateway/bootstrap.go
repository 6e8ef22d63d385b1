package gateway

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/nulzo/prism-fanout/internal/cli"
	"github.com/nulzo/prism-fanout/internal/config"
	"github.com/nulzo/prism-fanout/internal/llm"
	"github.com/nulzo/prism-fanout/internal/platform/logger"
	"go.uber.org/zap"
)

// BootstrapRegistry builds the provider registry from configuration. Disabled
// rows are skipped. A row that fails validation or names an unknown adapter
// type is a startup error, as is a duplicate id.
func BootstrapRegistry(providers []config.ProviderConfig, log *zap.Logger) (*llm.Registry, error) {
	validate := validator.New()
	entries := make([]llm.Entry, 0, len(providers))

	for _, pCfg := range providers {
		if !pCfg.Enabled {
			log.Debug("Provider disabled", zap.String("id", pCfg.ID))
			continue
		}

		if err := validate.Struct(&pCfg); err != nil {
			return nil, rejected(log, pCfg, fmt.Errorf("invalid configuration: %w", err))
		}

		provider, err := llm.CreateProvider(pCfg)
		if err != nil {
			return nil, rejected(log, pCfg, err)
		}

		entries = append(entries, llm.Entry{
			ID:             pCfg.ID,
			Name:           pCfg.Name,
			CredentialName: pCfg.Credential,
			Provider:       provider,
		})

		fallback := cli.Stylize("request key only", cli.Yellow)
		if pCfg.APIKey != "" {
			fallback = cli.Stylize("fallback key set", cli.Green)
		}
		log.Info(fmt.Sprintf("%s %s %s",
			cli.CheckMark(),
			cli.Stylize(fmt.Sprintf("%-12s", pCfg.ID), cli.Black),
			fallback,
		), zap.String("type", pCfg.Type), zap.String("credential", pCfg.Credential),
			logger.Presence("fallback", pCfg.APIKey))
	}

	registry, err := llm.NewRegistry(entries...)
	if err != nil {
		return nil, err
	}

	if registry.Len() == 0 {
		log.Warn(fmt.Sprintf("%s %s", cli.WarningSign(),
			cli.Stylize("No providers registered. Every run will return an empty result.", cli.Yellow)))
	}

	return registry, nil
}

func rejected(log *zap.Logger, pCfg config.ProviderConfig, err error) error {
	log.Error(fmt.Sprintf("%s %s",
		cli.CrossMark(),
		cli.Stylize(fmt.Sprintf("%-12s", pCfg.ID), cli.Red),
	), zap.String("type", pCfg.Type), zap.Error(err))
	return fmt.Errorf("provider %q: %w", pCfg.ID, err)
}

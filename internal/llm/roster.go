package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
)

// ModelInfo describes one entry in the available-model roster.
type ModelInfo struct {
	ID string `json:"id"`
}

// ListModels merges the local LM Studio roster with configured cloud
// providers. Cloud entries use "provider:model" ids so callers can
// tell them apart without extra metadata. An unreachable LM Studio is
// not fatal: cloud-only operation is a supported state.
func (r *Router) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var models []ModelInfo

	local, err := r.listLocalModels(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("LM Studio roster unavailable")
	} else {
		models = append(models, local...)
	}

	providers := make([]string, 0, len(r.config.Providers))
	for name := range r.config.Providers {
		providers = append(providers, name)
	}
	sort.Strings(providers)
	for _, name := range providers {
		p := r.config.Providers[name]
		if p.APIKey == "" || p.DefaultModel == "" {
			continue
		}
		models = append(models, ModelInfo{ID: name + ":" + p.DefaultModel})
	}

	if len(models) == 0 && err != nil {
		return nil, fmt.Errorf("no models available: %w", err)
	}
	return models, nil
}

func (r *Router) listLocalModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.config.LMStudioURL+"/v1/models", nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("model roster returned status %d", resp.StatusCode)
	}
	var decoded struct {
		Data []ModelInfo `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode model roster: %w", err)
	}
	return decoded.Data, nil
}

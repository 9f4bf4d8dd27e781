package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"PriceSentinel/internal/model"
)

// FileFetcher reads series from JSON files, <Dir>/<SYMBOL>.json, each holding
// an array of observations. Path, when set, is used for every symbol.
type FileFetcher struct {
	Dir  string
	Path string
}

func (f *FileFetcher) Name() string { return "file" }

func (f *FileFetcher) FetchDailySeries(ctx context.Context, symbol string, days int) ([]model.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := f.Path
	if path == "" {
		path = filepath.Join(f.Dir, symbol+".json")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoData)
		}
		return nil, fmt.Errorf("read series: %w", err)
	}
	var obs []model.Observation
	if err := json.Unmarshal(data, &obs); err != nil {
		return nil, fmt.Errorf("decode series %s: %w", path, err)
	}
	if days > 0 && len(obs) > days {
		obs = obs[len(obs)-days:]
	}
	return obs, nil
}

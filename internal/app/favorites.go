package app

import (
	"os"
	"sort"
)

// FavoriteInfo describes one configured favorite.
type FavoriteInfo struct {
	Name        string
	Description string
	Location    string
	Branch      string
	Subfolder   string
}

// ListFavorites returns the favorites of the app config, sorted by name.
func ListFavorites(configPath string) ([]FavoriteInfo, error) {
	cfg, err := loadAppConfig(configPath, os.LookupEnv)
	if err != nil {
		return nil, err
	}

	out := make([]FavoriteInfo, 0, len(cfg.Favorites))
	for name, fav := range cfg.Favorites {
		out = append(out, FavoriteInfo{
			Name:        name,
			Description: fav.Description,
			Location:    fav.Location(),
			Branch:      fav.Branch,
			Subfolder:   fav.Subfolder,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

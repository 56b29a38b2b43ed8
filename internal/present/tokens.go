package present

import (
	"context"
	"fmt"

	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/constants"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/models"
)

// ImageProbe reports whether an image URL can be displayed.
type ImageProbe interface {
	ImageAvailable(ctx context.Context, url string) bool
}

type Link struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

type TokenCard struct {
	Name        string   `json:"name"`
	Symbol      string   `json:"symbol,omitempty"`
	Network     string   `json:"network,omitempty"`
	Address     string   `json:"address,omitempty"`
	ImageURL    string   `json:"image_url"`
	Placeholder bool     `json:"placeholder"`
	Websites    []Link   `json:"websites"`
	GTScore     string   `json:"gt_score"`
	GTScoreRaw  *float64 `json:"gt_score_raw"`
	Description string   `json:"description"`
}

// TokenCards builds one card per token. The image falls back to a placeholder
// when the URL is absent or the probe cannot reach it; a nil probe trusts any
// non-empty URL.
func TokenCards(ctx context.Context, tokens []models.TokenRecord, probe ImageProbe) []TokenCard {
	cards := make([]TokenCard, 0, len(tokens))
	for _, tok := range tokens {
		card := TokenCard{
			Name:        tok.Name,
			Symbol:      tok.Symbol,
			Network:     tok.Network,
			Address:     tok.Address,
			ImageURL:    tok.ImageURL,
			Websites:    make([]Link, 0, len(tok.Websites)),
			GTScore:     "n/a",
			GTScoreRaw:  tok.GTScore,
			Description: tok.Description,
		}
		if tok.ImageURL == "" || (probe != nil && !probe.ImageAvailable(ctx, tok.ImageURL)) {
			card.ImageURL = constants.PlaceholderImageURL
			card.Placeholder = true
		}
		if tok.GTScore != nil {
			card.GTScore = fmt.Sprintf("%.2f", *tok.GTScore)
		}
		for _, w := range tok.Websites {
			card.Websites = append(card.Websites, Link{URL: w, Label: w})
		}
		cards = append(cards, card)
	}
	return cards
}

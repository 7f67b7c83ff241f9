package usecase

import (
	"fmt"

	"topupstore/internal/domain/model"

	"github.com/shopspring/decimal"
)

type seedPack struct {
	Amount int64
	Price  int64
	Stock  int64
}

type seedGame struct {
	GameType string
	GameName string
	Server   string
	Category string
	Packs    []seedPack
}

var seedGames = []seedGame{
	{"MLBB", "Mobile Legends: Bang Bang", "Indonesia", "Diamond", []seedPack{
		{50, 12000, 100}, {100, 23000, 100}, {250, 55000, 100},
		{500, 110000, 100}, {1000, 220000, 100}, {2000, 440000, 50},
	}},
	{"HOK", "Honor of Kings", "Global", "Diamond", []seedPack{
		{50, 13000, 100}, {100, 25000, 100}, {250, 60000, 100},
		{500, 115000, 100}, {1000, 230000, 100},
	}},
	{"AOV", "Arena of Valor", "Asia", "Diamond", []seedPack{
		{50, 12000, 100}, {100, 23000, 100}, {250, 55000, 100}, {500, 110000, 100},
	}},
	{"PUBG", "PUBG Mobile", "Global", "UC", []seedPack{
		{60, 15000, 100}, {325, 75000, 100}, {660, 150000, 100},
		{1800, 400000, 100}, {3850, 850000, 100},
	}},
	{"Free Fire", "Free Fire", "Indonesia", "Diamond", []seedPack{
		{50, 12000, 100}, {100, 23000, 100}, {250, 55000, 100},
		{500, 110000, 100}, {1000, 220000, 100},
	}},
	{"Roblox", "Roblox", "Global", "Robux", []seedPack{
		{80, 15000, 100}, {400, 70000, 100}, {800, 140000, 100},
		{2000, 350000, 100}, {4500, 750000, 100},
	}},
	{"COC", "Clash of Clans", "Global", "Gem", []seedPack{
		{100, 15000, 100}, {500, 70000, 100}, {1200, 160000, 100},
		{2500, 330000, 100}, {6500, 850000, 100},
	}},
}

// サンプルカタログ
func SeedListings() []model.Listing {
	out := make([]model.Listing, 0, 40)
	for _, g := range seedGames {
		for _, p := range g.Packs {
			out = append(out, model.Listing{
				GameName:    g.GameName,
				GameType:    g.GameType,
				Server:      g.Server,
				Category:    g.Category,
				Amount:      p.Amount,
				Price:       decimal.NewFromInt(p.Price),
				Stock:       p.Stock,
				Description: fmt.Sprintf("%d %s %s untuk server %s", p.Amount, g.Category, g.GameName, g.Server),
			})
		}
	}
	return out
}

// Package market generates the simulated market: a fixed symbol universe,
// seeded random-walk price history, and live tick synthesis.
package market

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"marketdesk/internal/models"
)

// DefaultUniverse returns the built-in fake symbols across six sectors plus ETFs.
// Volatility multipliers set each sector's temperament: tech runs hot, ETFs stay calm.
func DefaultUniverse() []models.Symbol {
	return []models.Symbol{
		{Ticker: "NVAX", Name: "Novax Dynamics Inc", Sector: models.SectorTech, BasePrice: 185.00, TickSize: 0.01, VolMult: 1.4, AvgVolume: 2400000},
		{Ticker: "QBIT", Name: "Qbit Quantum Corp", Sector: models.SectorTech, BasePrice: 92.50, TickSize: 0.01, VolMult: 1.6, AvgVolume: 1800000},
		{Ticker: "FLUX", Name: "Flux Systems Ltd", Sector: models.SectorTech, BasePrice: 310.00, TickSize: 0.01, VolMult: 1.3, AvgVolume: 3100000},
		{Ticker: "SYNK", Name: "Synk Networks Inc", Sector: models.SectorTech, BasePrice: 67.25, TickSize: 0.01, VolMult: 1.5, AvgVolume: 1500000},
		{Ticker: "CYRA", Name: "Cyra Robotics Inc", Sector: models.SectorTech, BasePrice: 220.00, TickSize: 0.01, VolMult: 1.7, AvgVolume: 2800000},

		{Ticker: "LEDG", Name: "Ledger Capital Group", Sector: models.SectorFinance, BasePrice: 78.50, TickSize: 0.01, VolMult: 0.8, AvgVolume: 1900000},
		{Ticker: "VALT", Name: "Vault Securities Inc", Sector: models.SectorFinance, BasePrice: 125.00, TickSize: 0.01, VolMult: 0.7, AvgVolume: 1200000},
		{Ticker: "MNTX", Name: "Mintex Banking Corp", Sector: models.SectorFinance, BasePrice: 165.00, TickSize: 0.01, VolMult: 0.6, AvgVolume: 2100000},
		{Ticker: "FNDX", Name: "Fundex Asset Mgmt", Sector: models.SectorFinance, BasePrice: 88.75, TickSize: 0.01, VolMult: 0.8, AvgVolume: 900000},

		{Ticker: "HELX", Name: "Helix Biomedical Inc", Sector: models.SectorHealthcare, BasePrice: 195.00, TickSize: 0.01, VolMult: 0.5, AvgVolume: 1100000},
		{Ticker: "CURA", Name: "Cura Therapeutics", Sector: models.SectorHealthcare, BasePrice: 72.00, TickSize: 0.01, VolMult: 0.6, AvgVolume: 800000},
		{Ticker: "GENM", Name: "Genome Medics Corp", Sector: models.SectorHealthcare, BasePrice: 148.50, TickSize: 0.01, VolMult: 0.7, AvgVolume: 1300000},

		{Ticker: "VOLT", Name: "Volt Energy Corp", Sector: models.SectorEnergy, BasePrice: 98.00, TickSize: 0.01, VolMult: 1.1, AvgVolume: 2200000},
		{Ticker: "SOLR", Name: "Solaris Power Inc", Sector: models.SectorEnergy, BasePrice: 42.50, TickSize: 0.01, VolMult: 1.0, AvgVolume: 1600000},
		{Ticker: "FUSE", Name: "Fuse Petroleum Ltd", Sector: models.SectorEnergy, BasePrice: 175.00, TickSize: 0.01, VolMult: 1.2, AvgVolume: 2600000},

		{Ticker: "BRND", Name: "Brand Global Inc", Sector: models.SectorConsumer, BasePrice: 112.00, TickSize: 0.01, VolMult: 0.8, AvgVolume: 1400000},
		{Ticker: "LUXE", Name: "Luxe Retail Corp", Sector: models.SectorConsumer, BasePrice: 285.00, TickSize: 0.01, VolMult: 0.7, AvgVolume: 1000000},
		{Ticker: "DLVR", Name: "Deliver Express Inc", Sector: models.SectorConsumer, BasePrice: 78.00, TickSize: 0.01, VolMult: 0.9, AvgVolume: 1700000},

		{Ticker: "FORG", Name: "Forge Manufacturing", Sector: models.SectorIndustrial, BasePrice: 132.00, TickSize: 0.01, VolMult: 1.0, AvgVolume: 1200000},
		{Ticker: "MACH", Name: "Mach Precision Corp", Sector: models.SectorIndustrial, BasePrice: 205.00, TickSize: 0.01, VolMult: 1.0, AvgVolume: 950000},
		{Ticker: "ALOY", Name: "Aloy Materials Inc", Sector: models.SectorIndustrial, BasePrice: 56.75, TickSize: 0.01, VolMult: 1.2, AvgVolume: 1350000},

		{Ticker: "MKTS", Name: "Markets Broad ETF", Sector: models.SectorETF, BasePrice: 350.00, TickSize: 0.01, VolMult: 0.4, AvgVolume: 5200000},
		{Ticker: "GRWT", Name: "Growth Select ETF", Sector: models.SectorETF, BasePrice: 180.00, TickSize: 0.01, VolMult: 0.5, AvgVolume: 4100000},
	}
}

// LoadUniverse reads a symbol universe from a CSV file.
func LoadUniverse(path string) ([]models.Symbol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening universe file: %w", err)
	}
	defer f.Close()

	var symbols []*models.Symbol
	if err := gocsv.UnmarshalFile(f, &symbols); err != nil {
		return nil, fmt.Errorf("parsing universe file: %w", err)
	}

	out := make([]models.Symbol, 0, len(symbols))
	for _, s := range symbols {
		if s.Ticker == "" || s.BasePrice <= 0 {
			return nil, fmt.Errorf("invalid universe row: ticker=%q base_price=%.2f", s.Ticker, s.BasePrice)
		}
		if s.TickSize <= 0 {
			s.TickSize = 0.01
		}
		if s.VolMult <= 0 {
			s.VolMult = 1.0
		}
		if s.AvgVolume <= 0 {
			s.AvgVolume = 1000000
		}
		out = append(out, *s)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("universe file %s contains no symbols", path)
	}
	return out, nil
}

// BySector groups symbols by their sector.
func BySector(symbols []models.Symbol) map[models.Sector][]models.Symbol {
	m := make(map[models.Sector][]models.Symbol)
	for _, s := range symbols {
		m[s.Sector] = append(m[s.Sector], s)
	}
	return m
}

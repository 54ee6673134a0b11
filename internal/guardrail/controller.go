package guardrail

import (
	"github.com/rs/zerolog"

	"tezaver/internal/models"
)

// Reason codes for guardrail decisions.
const (
	ReasonAllow             = "ALLOW"
	ReasonBlockGlobalLimit  = "BLOCK_GLOBAL_LIMIT"
	ReasonBlockNoProfile    = "BLOCK_NO_PROFILE"
	ReasonBlockRejected     = "BLOCK_STRATEGY_REJECTED"
	ReasonBlockRadarCold    = "BLOCK_RADAR_COLD"
	ReasonBlockRadarChaotic = "BLOCK_RADAR_CHAOTIC"
	ReasonBlockLowScore     = "BLOCK_STRATEGY_LOW_SCORE"
)

// Decision is the outcome of one guardrail evaluation. It is emitted
// per evaluated entry and observable through the proxy's callback; the
// engine itself only sees the allow/deny effect.
type Decision struct {
	Allow      bool
	ReasonCode string
	Details    Details
}

// Details echoes the inputs the decision considered.
type Details struct {
	EnvStatus        EnvStatus
	PromotionStatus  PromotionStatus
	AffinityScore    float64
	OpenPositions    int
	MaxOpenPositions int
}

// Config holds the controller's limits.
type Config struct {
	// MaxOpenPositions caps concurrently open positions across the
	// whole fleet sharing one ledger.
	MaxOpenPositions int
	// MinAffinityScore is the floor for the offline lab's 0-100
	// affinity metric.
	MinAffinityScore float64
	// DataDir is the root of the offline lab's profile files.
	DataDir string
}

// Controller caches per-symbol intelligence profiles and answers
// whether a new long may be opened. Profiles are loaded once at
// construction and refreshed only via Reload, so guardrail behavior is
// deterministic within a single simulation pass.
type Controller struct {
	cfg      Config
	profiles map[string]Profile
	logger   zerolog.Logger
}

// NewController creates a controller and loads profiles for the given
// symbols.
func NewController(cfg Config, symbols []string, logger zerolog.Logger) *Controller {
	if cfg.MaxOpenPositions <= 0 {
		cfg.MaxOpenPositions = 5
	}
	if cfg.MinAffinityScore <= 0 {
		cfg.MinAffinityScore = 60
	}

	c := &Controller{
		cfg:      cfg,
		profiles: make(map[string]Profile, len(symbols)),
		logger:   logger,
	}
	for _, sym := range symbols {
		c.profiles[sym] = LoadProfile(cfg.DataDir, sym, logger)
	}
	return c
}

// Reload refreshes every cached profile from disk.
func (c *Controller) Reload() {
	for sym := range c.profiles {
		c.profiles[sym] = LoadProfile(c.cfg.DataDir, sym, c.logger)
	}
	c.logger.Info().Int("symbols", len(c.profiles)).Msg("Guardrail profiles reloaded")
}

// ProfileFor returns the cached profile for a symbol, if any.
func (c *Controller) ProfileFor(symbol string) (Profile, bool) {
	p, ok := c.profiles[symbol]
	return p, ok
}

// Symbols returns the symbols the controller manages.
func (c *Controller) Symbols() []string {
	syms := make([]string, 0, len(c.profiles))
	for sym := range c.profiles {
		syms = append(syms, sym)
	}
	return syms
}

// CheckOpenNewLong runs the ordered guardrail checks for opening a new
// long on the symbol. The first failing check wins; later checks are
// not consulted.
func (c *Controller) CheckOpenNewLong(symbol string, account models.AccountState) Decision {
	open := account.OpenPositions()

	// 1. Fleet-wide position limit. A symbol that already holds a
	// position is exempt: the check gates new exposure, not exits.
	if open >= c.cfg.MaxOpenPositions {
		if _, held := account.PositionFor(symbol); !held {
			return Decision{
				ReasonCode: ReasonBlockGlobalLimit,
				Details:    Details{OpenPositions: open, MaxOpenPositions: c.cfg.MaxOpenPositions},
			}
		}
	}

	// 2. Unknown symbols are never traded.
	profile, ok := c.profiles[symbol]
	if !ok {
		return Decision{ReasonCode: ReasonBlockNoProfile}
	}

	details := Details{
		EnvStatus:        profile.EnvStatus,
		PromotionStatus:  profile.PromotionStatus,
		AffinityScore:    profile.AffinityScore,
		OpenPositions:    open,
		MaxOpenPositions: c.cfg.MaxOpenPositions,
	}

	// 3. Promotion verdict precedes the radar.
	if profile.PromotionStatus == PromotionRejected {
		return Decision{ReasonCode: ReasonBlockRejected, Details: details}
	}

	// 4. No buying into downtrends or crash regimes.
	switch profile.EnvStatus {
	case EnvCold:
		return Decision{ReasonCode: ReasonBlockRadarCold, Details: details}
	case EnvChaotic:
		return Decision{ReasonCode: ReasonBlockRadarChaotic, Details: details}
	}

	// 5. Affinity floor.
	if profile.AffinityScore < c.cfg.MinAffinityScore {
		return Decision{ReasonCode: ReasonBlockLowScore, Details: details}
	}

	return Decision{Allow: true, ReasonCode: ReasonAllow, Details: details}
}

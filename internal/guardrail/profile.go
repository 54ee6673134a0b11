// Package guardrail provides the policy gate that can veto entry
// decisions based on offline intelligence profiles.
package guardrail

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// EnvStatus is the offline radar's view of a symbol's environment.
type EnvStatus string

const (
	EnvHot     EnvStatus = "HOT"
	EnvNeutral EnvStatus = "NEUTRAL"
	EnvCold    EnvStatus = "COLD"
	EnvChaotic EnvStatus = "CHAOTIC"
	EnvUnknown EnvStatus = "UNKNOWN"
)

// PromotionStatus is the offline simulation lab's verdict on a
// symbol/strategy pairing.
type PromotionStatus string

const (
	PromotionApproved  PromotionStatus = "APPROVED"
	PromotionCandidate PromotionStatus = "CANDIDATE"
	PromotionRejected  PromotionStatus = "REJECTED"
	PromotionUnknown   PromotionStatus = "UNKNOWN"
)

// Profile is the per-symbol intelligence snapshot consumed by the
// controller. It is loaded from disk, never written by this package.
type Profile struct {
	Symbol          string
	EnvStatus       EnvStatus
	PromotionStatus PromotionStatus
	AffinityScore   float64
	LastUpdatedAt   time.Time
}

type radarFile struct {
	EnvironmentStatus string `json:"environment_status"`
}

type promotionFile struct {
	PromotionStatus string   `json:"promotion_status"`
	Score           *float64 `json:"score"`
}

// defaultAffinityScore applies when a promotion file exists but the
// lab has not scored the pairing yet.
const defaultAffinityScore = 50.0

// LoadProfile reads a symbol's intelligence from the offline lab's
// JSON files under dataDir:
//
//	{dataDir}/coin_profiles/{symbol}/rally_radar.json
//	{dataDir}/coin_profiles/{symbol}/sim_promotion.json
//
// A missing or unreadable file leaves the corresponding fields at
// UNKNOWN/0; the refresh cadence of those files is the offline lab's
// concern, not ours.
func LoadProfile(dataDir, symbol string, logger zerolog.Logger) Profile {
	profileDir := filepath.Join(dataDir, "coin_profiles", symbol)

	profile := Profile{
		Symbol:          symbol,
		EnvStatus:       EnvUnknown,
		PromotionStatus: PromotionUnknown,
		AffinityScore:   0,
		LastUpdatedAt:   time.Now().UTC(),
	}

	var radar radarFile
	if readJSONFile(filepath.Join(profileDir, "rally_radar.json"), &radar, logger) {
		if radar.EnvironmentStatus != "" {
			profile.EnvStatus = EnvStatus(radar.EnvironmentStatus)
		}
	}

	var promo promotionFile
	if readJSONFile(filepath.Join(profileDir, "sim_promotion.json"), &promo, logger) {
		if promo.PromotionStatus != "" {
			profile.PromotionStatus = PromotionStatus(promo.PromotionStatus)
		}
		profile.AffinityScore = defaultAffinityScore
		if promo.Score != nil {
			profile.AffinityScore = *promo.Score
		}
	}

	return profile
}

func readJSONFile(path string, target interface{}, logger zerolog.Logger) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", path).Msg("Profile file unreadable, using defaults")
		}
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Profile file malformed, using defaults")
		return false
	}
	return true
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// JWT secrets
	if len(c.JWT.AccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 characters")
	}
	if len(c.JWT.RefreshSecret) < 32 {
		errs = append(errs, "JWT_REFRESH_SECRET must be at least 32 characters")
	}
	if c.JWT.AccessSecret != "" && c.JWT.RefreshSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, "JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}

	// Credit economy: a zero or negative cap would permanently gate rewards
	if c.Credits.StartingBalance < 0 {
		errs = append(errs, "CREDITS_STARTING_BALANCE must not be negative")
	}
	if c.Credits.GenerationCost < 1 {
		errs = append(errs, "CREDITS_GENERATION_COST must be at least 1")
	}
	if c.Credits.InterstitialReward < 1 || c.Credits.RewardedReward < 1 {
		errs = append(errs, "ad rewards must be at least 1 credit")
	}
	if c.Credits.InterstitialDayCap < 1 || c.Credits.RewardedDayCap < 1 {
		errs = append(errs, "daily ad caps must be at least 1")
	}
	if c.Credits.Timezone != "" && c.Credits.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Credits.Timezone); err != nil {
			errs = append(errs, fmt.Sprintf("CREDITS_TIMEZONE %q is not a valid IANA zone", c.Credits.Timezone))
		}
	}

	// Ads
	switch c.Ads.Provider {
	case "simulated":
	case "network":
		if c.Ads.NetworkURL == "" {
			errs = append(errs, "ADS_NETWORK_URL is required when ADS_PROVIDER=network")
		}
	default:
		errs = append(errs, fmt.Sprintf("ADS_PROVIDER must be \"simulated\" or \"network\", got %q", c.Ads.Provider))
	}
	if c.Ads.InterstitialChance < 0 || c.Ads.InterstitialChance > 1 {
		errs = append(errs, fmt.Sprintf("ADS_INTERSTITIAL_CHANCE must be within [0,1], got %g", c.Ads.InterstitialChance))
	}

	if c.Generation.EndpointURL == "" {
		errs = append(errs, "GENERATION_ENDPOINT_URL is required")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}

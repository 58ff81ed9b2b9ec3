// Package config loads runtime settings from the environment and session
// tuning (name pools, kill templates, combatant counts) from an optional
// YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds process-level settings, read from the environment.
type Config struct {
	Role       string
	NATSURL    string
	Subject    string
	HTTPAddr   string
	DBPath     string
	TuningPath string
	TotalHours float64
	Seed       int64
}

// FromEnv reads STORM_* environment variables with defaults.
func FromEnv() Config {
	return Config{
		Role:       getEnv("STORM_ROLE", "authority"),
		NATSURL:    getEnv("STORM_NATS_URL", "nats://127.0.0.1:4222"),
		Subject:    getEnv("STORM_SYNC_SUBJECT", ""),
		HTTPAddr:   getEnv("STORM_HTTP_ADDR", ":8090"),
		DBPath:     getEnv("STORM_DB_PATH", "stormengine.db"),
		TuningPath: getEnv("STORM_TUNING_PATH", ""),
		TotalHours: getEnvAsFloat("STORM_TOTAL_HOURS", 2.5),
		Seed:       int64(getEnvAsInt("STORM_SEED", 0)),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// Tuning parameterizes the kill-pacing simulator and presentation fallbacks.
type Tuning struct {
	InitialCombatants int      `yaml:"initial_combatants"`
	FinalSurvivors    int      `yaml:"final_survivors"`
	FeedLimit         int      `yaml:"feed_limit"`
	FallbackColor     string   `yaml:"fallback_color"`
	Names             []string `yaml:"names"`
	Templates         []string `yaml:"templates"`
}

// DefaultTuning is the built-in session flavor, used when no tuning file is
// configured. The name pool must hold at least initial - final entries, since
// a victim is never eliminated twice.
func DefaultTuning() Tuning {
	return Tuning{
		InitialCombatants: 100,
		FinalSurvivors:    2,
		FeedLimit:         8,
		FallbackColor:     "#4f8fd0",
		Names: []string{
			"Brakka the Red", "Sister Mirelle", "Odo Thistlewick", "Karnath",
			"Vex of the Mire", "Tomlin Ashgrove", "Grune Halfhand", "Lady Issolde",
			"Pemberly Crowe", "Dragan Volk", "Mother Hespa", "Finnegan Todd",
			"Ursa Greymantle", "Caldo the Lesser", "Wren Nightingale", "Bosk",
			"Hilda Ironbrew", "Sylvar Moontide", "Grimble Stoat", "Anneke Darrow",
			"Thrum Bonecarver", "Petra Quill", "Maldovar the Vain", "Joss Redfern",
			"Serah Blackbriar", "Corvin Dusk", "Ilka of Ninebridges", "Rodric Fell",
			"Thessaly Vane", "Bram Oakenshield", "Nerys Coldwater", "Jorun Axehaft",
			"Melisande Troy", "Gaspar the Quiet", "Oona Ferrow", "Durn Cragsson",
			"Liora Emberlyn", "Watt Piper", "Sigrun Valdis", "Elric Mossbane",
			"Tansy Gullwhistle", "Korrag Ironjaw", "Yseult Marrow", "Pell Draven",
			"Hecuba Snow", "Farin Deepdelve", "Aveline Thorn", "Ogden Rattlebone",
			"Mirth Callahan", "Zusa the Veiled", "Benedict Crow", "Halla Stormborn",
			"Quill Natterjack", "Ingrid Palefire", "Toben Larkspur", "Vashti Morrow",
			"Gideon Ashpool", "Runa Wolfsbane", "Casper Nettle", "Sable Vex",
			"Edda Brightwell", "Morcant the Grey", "Posy Underhill", "Drystan Hale",
			"Freyja Tallow", "Osric Bramblefoot", "Nimue Gale", "Tarquin Bloodworth",
			"Greta Hollowell", "Alaric Dunmore", "Wilhelmina Crane", "Baxter Grimsby",
			"Isolde Ravenhart", "Cormac Flint", "Delia Winterbourne", "Hobb Muckle",
			"Seraphine Lovel", "Aldous Pike", "Magda Thornquist", "Ewan Blackpool",
			"Ottoline Marsh", "Ragnar Duskwalker", "Cecily Fairwood", "Torvald Grim",
			"Honora Pease", "Leofric Stone", "Bellamy Quirk", "Astrid Koll",
			"Percival Lund", "Maeve Saltmarsh", "Hadrian Voss", "Tilda Greenbriar",
			"Roland Mercer", "Sybil Crowther", "Garrick Holt", "Elowen Frost",
			"Nestor Bane", "Winnifred Glass", "Caius Thistledown", "Branwen Hollow",
		},
		Templates: []string{
			"{attacker} eliminated {victim}",
			"{victim} fell to {attacker}'s blade",
			"{attacker} caught {victim} outside the storm wall",
			"{victim} was ambushed by {attacker}",
			"{attacker} ended {victim}'s run",
		},
	}
}

// LoadTuning reads a tuning file, layering it over the defaults. An empty
// path returns the defaults; a missing or unreadable file is an error the
// caller may treat as non-fatal.
func LoadTuning(path string) (Tuning, error) {
	tuning := DefaultTuning()
	if path == "" {
		return tuning, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return tuning, fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return DefaultTuning(), fmt.Errorf("parse tuning file: %w", err)
	}
	return tuning, nil
}

package neat

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Config stores the configuration parameters for a run.
type Config struct {
	Neat         NeatConfig
	Genome       GenomeConfig
	Reproduction ReproductionConfig
	SpeciesSet   SpeciesSetConfig
	Stagnation   StagnationConfig
}

// NeatConfig holds run-level parameters.
type NeatConfig struct {
	PopSize              int     `ini:"pop_size"`
	FitnessThreshold     float64 `ini:"fitness_threshold"`
	NoFitnessTermination bool    `ini:"no_fitness_termination"`
	Seed                 int64   `ini:"seed"` // Seed for the shared random source
}

// GenomeConfig holds parameters specific to the structure and mutation of networks.
type GenomeConfig struct {
	NumInputs  int `ini:"num_inputs"`
	NumOutputs int `ini:"num_outputs"`

	// Compatibility distance coefficients (c1, c2, c3).
	CompatibilityExcessCoefficient   float64 `ini:"compatibility_excess_coefficient"`
	CompatibilityDisjointCoefficient float64 `ini:"compatibility_disjoint_coefficient"`
	CompatibilityWeightCoefficient   float64 `ini:"compatibility_weight_coefficient"`

	ConnAddProb float64 `ini:"conn_add_prob"`
	NodeAddProb float64 `ini:"node_add_prob"`

	// --- Connection Gene parameters ---
	WeightInitMean    float64 `ini:"weight_init_mean"`
	WeightInitStdev   float64 `ini:"weight_init_stdev"`
	WeightInitType    string  `ini:"weight_init_type"` // gaussian or uniform
	WeightMutateRate  float64 `ini:"weight_mutate_rate"`
	WeightReplaceRate float64 `ini:"weight_replace_rate"`
	WeightMutatePower float64 `ini:"weight_mutate_power"`
	WeightMaxValue    float64 `ini:"weight_max_value"`
	WeightMinValue    float64 `ini:"weight_min_value"`
}

// ReproductionConfig holds parameters related to reproduction.
type ReproductionConfig struct {
	ElitismMinSize       int     `ini:"elitism_min_size"` // Species larger than this keep their champion
	SurvivalThreshold    float64 `ini:"survival_threshold"`
	NoCrossoverProb      float64 `ini:"no_crossover_prob"`
	InterspeciesMateRate float64 `ini:"interspecies_mate_rate"`
}

// SpeciesSetConfig holds parameters related to speciation.
type SpeciesSetConfig struct {
	CompatibilityThreshold float64 `ini:"compatibility_threshold"`
}

// StagnationConfig holds parameters related to stagnation.
type StagnationConfig struct {
	MaxStagnation int `ini:"max_stagnation"`
}

// DefaultConfig returns a configuration with the classic NEAT parameter values
// for a network with the given number of sensors and outputs.
func DefaultConfig(numInputs, numOutputs int) *Config {
	return &Config{
		Neat: NeatConfig{
			PopSize:          150,
			FitnessThreshold: 3.9,
			Seed:             1,
		},
		Genome: GenomeConfig{
			NumInputs:                        numInputs,
			NumOutputs:                       numOutputs,
			CompatibilityExcessCoefficient:   1.0,
			CompatibilityDisjointCoefficient: 1.0,
			CompatibilityWeightCoefficient:   0.4,
			ConnAddProb:                      0.05,
			NodeAddProb:                      0.03,
			WeightInitMean:                   0.0,
			WeightInitStdev:                  1.0,
			WeightInitType:                   "gaussian",
			WeightMutateRate:                 0.8,
			WeightReplaceRate:                0.1,
			WeightMutatePower:                0.5,
			WeightMaxValue:                   30.0,
			WeightMinValue:                   -30.0,
		},
		Reproduction: ReproductionConfig{
			ElitismMinSize:       5,
			SurvivalThreshold:    1.0,
			NoCrossoverProb:      0.25,
			InterspeciesMateRate: 0.001,
		},
		SpeciesSet: SpeciesSetConfig{
			CompatibilityThreshold: 3.0,
		},
		Stagnation: StagnationConfig{
			MaxStagnation: 15,
		},
	}
}

// LoadConfig loads configuration parameters from an INI file.
// Keys missing from the file keep their DefaultConfig values.
func LoadConfig(filePath string) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	config := DefaultConfig(0, 0)

	// Map sections to structs
	if err := cfg.Section("NEAT").MapTo(&config.Neat); err != nil {
		return nil, fmt.Errorf("failed to map [NEAT] section: %w", err)
	}
	if err := cfg.Section("DefaultGenome").MapTo(&config.Genome); err != nil {
		return nil, fmt.Errorf("failed to map [DefaultGenome] section: %w", err)
	}
	if err := cfg.Section("DefaultReproduction").MapTo(&config.Reproduction); err != nil {
		return nil, fmt.Errorf("failed to map [DefaultReproduction] section: %w", err)
	}
	if err := cfg.Section("DefaultSpeciesSet").MapTo(&config.SpeciesSet); err != nil {
		return nil, fmt.Errorf("failed to map [DefaultSpeciesSet] section: %w", err)
	}
	if err := cfg.Section("DefaultStagnation").MapTo(&config.Stagnation); err != nil {
		return nil, fmt.Errorf("failed to map [DefaultStagnation] section: %w", err)
	}

	config.Genome.WeightInitType = strings.ToLower(cleanIniString(config.Genome.WeightInitType))
	if config.Genome.WeightInitType == "" {
		config.Genome.WeightInitType = "gaussian"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks that every parameter is within its legal range.
func (c *Config) Validate() error {
	if c.Neat.PopSize <= 0 {
		return fmt.Errorf("config error: pop_size must be positive")
	}
	if c.Genome.NumInputs <= 0 {
		return fmt.Errorf("config error: num_inputs must be positive")
	}
	if c.Genome.NumOutputs <= 0 {
		return fmt.Errorf("config error: num_outputs must be positive")
	}
	if c.Genome.CompatibilityExcessCoefficient < 0 {
		return fmt.Errorf("config error: compatibility_excess_coefficient cannot be negative")
	}
	if c.Genome.CompatibilityDisjointCoefficient < 0 {
		return fmt.Errorf("config error: compatibility_disjoint_coefficient cannot be negative")
	}
	if c.Genome.CompatibilityWeightCoefficient < 0 {
		return fmt.Errorf("config error: compatibility_weight_coefficient cannot be negative")
	}

	probabilities := []struct {
		name  string
		value float64
	}{
		{"conn_add_prob", c.Genome.ConnAddProb},
		{"node_add_prob", c.Genome.NodeAddProb},
		{"weight_mutate_rate", c.Genome.WeightMutateRate},
		{"weight_replace_rate", c.Genome.WeightReplaceRate},
		{"survival_threshold", c.Reproduction.SurvivalThreshold},
		{"no_crossover_prob", c.Reproduction.NoCrossoverProb},
		{"interspecies_mate_rate", c.Reproduction.InterspeciesMateRate},
	}
	for _, p := range probabilities {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", p.name)
		}
	}
	if c.Reproduction.SurvivalThreshold == 0 {
		return fmt.Errorf("config error: survival_threshold must be greater than 0")
	}

	if c.Genome.WeightMaxValue < c.Genome.WeightMinValue {
		return fmt.Errorf("config error: weight_max_value cannot be less than weight_min_value")
	}
	if c.Genome.WeightInitStdev < 0 {
		return fmt.Errorf("config error: weight_init_stdev cannot be negative")
	}
	switch c.Genome.WeightInitType {
	case "gaussian", "normal", "uniform":
	default:
		return fmt.Errorf("config error: invalid weight_init_type '%s', must be one of 'gaussian', 'uniform'", c.Genome.WeightInitType)
	}
	if c.Reproduction.ElitismMinSize < 0 {
		return fmt.Errorf("config error: elitism_min_size cannot be negative")
	}
	if c.SpeciesSet.CompatibilityThreshold <= 0 {
		return fmt.Errorf("config error: compatibility_threshold must be positive")
	}
	if c.Stagnation.MaxStagnation <= 0 {
		return fmt.Errorf("config error: max_stagnation must be positive")
	}
	return nil
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

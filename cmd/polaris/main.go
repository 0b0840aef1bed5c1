package main

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"polaris"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "polaris",
	Short: "Serve Gemini capsules and Gopher holes",
	Long: `polaris serves one or more Gemini capsules over TLS, each backed
by a directory tree, plus optional Gopher holes for the retro crowd.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml, /etc/polaris/config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("/etc/polaris/")
		viper.AddConfigPath(".")
	}
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	capsules, holes, err := loadConfigs()
	if err != nil {
		return err
	}
	if len(capsules) == 0 && len(holes) == 0 {
		return fmt.Errorf("no capsules or gopherholes configured")
	}
	color.Green("%v capsules loaded, %v holes loaded", len(capsules), len(holes))

	var wg sync.WaitGroup
	for i, c := range capsules {
		color.Cyan("Starting capsule %v %v", i, c.Hostname)
		wg.Add(1)
		go func(c CapsuleConfig) {
			defer wg.Done()
			log.Fatal(serveCapsule(c))
		}(c)
	}
	for i, h := range holes {
		color.Cyan("Starting gopherhole %v %v", i, h.Hostname)
		wg.Add(1)
		go func(h HoleConfig) {
			defer wg.Done()
			log.Fatal(serveHole(h))
		}(h)
	}
	wg.Wait()
	return nil
}

// CapsuleConfig describes one Gemini capsule.
type CapsuleConfig struct {
	Hostname string
	Port     string
	KeyFile  string
	CertFile string
	RootDir  string
	Timeout  time.Duration
}

func (c *CapsuleConfig) String() string {
	return fmt.Sprintf("Capsule %v:%v Files:%v", c.Hostname, c.Port, c.RootDir)
}

// HoleConfig describes one Gopher hole.
type HoleConfig struct {
	Hostname string
	Port     string
	RootDir  string
}

func (c *HoleConfig) String() string {
	return fmt.Sprintf("Gopherhole %v:%v Files:%v", c.Hostname, c.Port, c.RootDir)
}

func loadConfigs() ([]CapsuleConfig, []HoleConfig, error) {
	names := viper.GetStringSlice("active_capsules")
	capsules := make([]CapsuleConfig, len(names))
	for i, name := range names {
		if err := viper.UnmarshalKey(name, &capsules[i]); err != nil {
			return nil, nil, fmt.Errorf("capsule %v: %w", name, err)
		}
		log.Printf("Loading capsule %v %v", i, capsules[i].Hostname)
	}
	holeNames := viper.GetStringSlice("active_holes")
	holes := make([]HoleConfig, len(holeNames))
	for i, name := range holeNames {
		if err := viper.UnmarshalKey(name, &holes[i]); err != nil {
			return nil, nil, fmt.Errorf("hole %v: %w", name, err)
		}
		log.Printf("Loading hole %v %v", i, holes[i].Hostname)
	}
	return capsules, holes, nil
}

func serveCapsule(c CapsuleConfig) error {
	port := c.Port
	if port == "" {
		port = polaris.DefaultPort
	}
	server := &polaris.Server{
		Addr:    c.Hostname + ":" + port,
		Handler: polaris.ServeDir(c.RootDir),
		Timeout: c.Timeout,
	}
	return server.ListenAndServeTLS(c.CertFile, c.KeyFile)
}

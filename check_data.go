//go:build ignore
// +build ignore

package main

import (
	"fmt"
	"os"

	"balloon-td/engine"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file, using the environment as is:", err)
	}

	fmt.Println("Match Data Check:")
	fmt.Println("=================")

	cfg, err := engine.ConfigFromEnv()
	if err != nil {
		fmt.Println("❌ Configuration:", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Configuration: money %d, lives %d, step %v, strict %v\n",
		cfg.StartingMoney, cfg.StartingLives, cfg.Step, cfg.Strict)

	path, waves, err := engine.LoadInputs(cfg)
	if err != nil {
		fmt.Println("❌ Match data:", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Track: %d waypoints from (%.0f,%.0f) to (%.0f,%.0f)\n",
		path.Len(), path.Start().X, path.Start().Y, path.End().X, path.End().Y)

	total := 0
	for n := 1; n <= waves.Len(); n++ {
		rc, _ := waves.Round(n)
		total += rc.Total()
		if rc.Total() == 0 {
			fmt.Printf("❌ Round %d spawns nothing\n", n)
		}
	}
	fmt.Printf("✓ Waves: %d rounds, %d balloons\n", waves.Len(), total)

	if err := engine.DefaultTierTable().Validate(); err != nil {
		fmt.Println("❌ Tier table:", err)
		os.Exit(1)
	}
	fmt.Println("✓ Tier table")

	if _, err := engine.NewMatch(path, waves, engine.WithConfig(cfg)); err != nil {
		fmt.Println("❌ Match setup:", err)
		os.Exit(1)
	}
	fmt.Println("✓ Match setup")
}

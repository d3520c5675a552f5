package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"ecobeehub/config"
	"ecobeehub/internal/core"
	"ecobeehub/internal/ecobee"
)

func main() {
	// Parse command line flags
	confPath := flag.String("conf", "ecobee.conf", "Path to ecobee.conf with API_KEY and REFRESH_TOKEN")
	apiKey := flag.String("api-key", "", "ecobee application API key (overrides -conf)")
	refreshToken := flag.String("refresh-token", "", "ecobee refresh token (overrides -conf)")
	baseURL := flag.String("base-url", ecobee.DefaultBaseURL, "ecobee API base URL")
	flag.Parse()

	creds, err := loadCredentials(*confPath, *apiKey, *refreshToken)
	if err != nil {
		log.Fatalf("❌ Error: %v\n\n"+
			"To get a refresh token:\n"+
			"1. Create an application at https://www.ecobee.com/developers/\n"+
			"2. Authorize it with the PIN flow on the ecobee web portal\n"+
			"3. Run this check with: -api-key <key> -refresh-token <token>\n", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := ecobee.NewClient(ecobee.Config{
		APIKey:       creds.APIKey,
		RefreshToken: creds.RefreshToken,
		BaseURL:      *baseURL,
	})

	fmt.Printf("Checking ecobee API...\n")
	fmt.Printf("Base URL: %s\n\n", *baseURL)

	if err := client.RefreshTokens(ctx); err != nil {
		log.Fatalf("❌ Token refresh failed: %v", err)
	}
	fmt.Printf("Tokens refreshed. New refresh token: %s\n", client.Credentials().RefreshToken)

	if err := client.Update(ctx); err != nil {
		log.Fatalf("❌ Thermostat fetch failed: %v", err)
	}

	thermostats := client.Thermostats()
	fmt.Printf("\nFound %d thermostat(s):\n", len(thermostats))
	for _, th := range thermostats {
		fmt.Printf("  - %s (%s, %s): %.1f°F, mode %s, %d sensor(s)\n",
			th.Name, th.Identifier, th.ModelNumber,
			th.Runtime.Temperature(), th.Settings.HVACMode, len(th.RemoteSensors))
	}

	if len(thermostats) == 0 {
		fmt.Printf("\n⚠️  No thermostats registered to this account. The hub will refuse to set it up.\n")
		os.Exit(1)
	}

	fmt.Printf("\n✅ Success! Store the new refresh token; the old one is no longer valid.\n")
}

func loadCredentials(confPath, apiKey, refreshToken string) (core.Credentials, error) {
	if apiKey != "" && refreshToken != "" {
		return core.Credentials{APIKey: apiKey, RefreshToken: refreshToken}, nil
	}

	creds, err := config.LoadEcobeeConf(confPath)
	if err != nil {
		return core.Credentials{}, err
	}
	if apiKey != "" {
		creds.APIKey = apiKey
	}
	if refreshToken != "" {
		creds.RefreshToken = refreshToken
	}
	if creds.APIKey == "" || creds.RefreshToken == "" {
		return core.Credentials{}, fmt.Errorf("api key and refresh token are required")
	}
	return creds, nil
}

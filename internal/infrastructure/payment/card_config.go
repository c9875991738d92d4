package payment

import "fmt"

const defaultCardAPIBaseURL = "https://api.odeme.example.com"

// CardAPIConfig holds credentials for the domestic bank card processor
type CardAPIConfig struct {
	APIKey    string
	SecretKey string
	BaseURL   string
}

// Validate checks that the required credentials are present
func (c *CardAPIConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("card api: API key is required")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("card api: secret key is required")
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultCardAPIBaseURL
	}
	return nil
}

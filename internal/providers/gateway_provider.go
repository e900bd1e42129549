package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"communa/tribune/internal/identity"
	"communa/tribune/internal/models/dtos"
)

// GatewayProvider is the HTTP client for the messaging gateway that
// fronts the actual transport. Tribune only reads from it: group
// rosters and group metadata.
type GatewayProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// Ensure GatewayProvider satisfies the resolver's collaborator contract.
var _ identity.RosterProvider = (*GatewayProvider)(nil)

// NewGatewayProvider creates a gateway client from environment config
func NewGatewayProvider() *GatewayProvider {
	baseURL := os.Getenv("GATEWAY_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000/api/v1" // Default
	}
	apiKey := os.Getenv("GATEWAY_API_KEY")

	return &GatewayProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type participantsResponse struct {
	Participants []dtos.Participant `json:"participants"`
}

// GetGroupParticipants fetches the roster of a group. The call is
// read-only and idempotent; callers degrade to "unresolved" on error.
func (p *GatewayProvider) GetGroupParticipants(ctx context.Context, groupID string) ([]dtos.Participant, error) {
	jid := identity.GroupIDToJID(groupID)

	var result participantsResponse
	status, err := p.doGet(ctx, "/groups/"+jid+"/participants", &result)
	if err != nil {
		return nil, fmt.Errorf("fetch participants for %s: %w", groupID, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetch participants for %s: unexpected status %d", groupID, status)
	}
	return result.Participants, nil
}

func (p *GatewayProvider) doGet(ctx context.Context, path string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+path, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if p.APIKey != "" {
		req.Header.Set("X-API-Key", p.APIKey)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}

	if resp.StatusCode == http.StatusOK && out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode gateway response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

package aptos

import (
	"net/http"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"
)

// Client reads through the node REST API and writes through the aptos CLI.
type Client struct {
	*NodeClient
	*CLISubmitter
}

func NewClient(cfg domain.AptosConfig, account Account, httpClient *http.Client) *Client {
	return &Client{
		NodeClient:   NewNodeClient(cfg.NodeURL, httpClient),
		CLISubmitter: NewCLISubmitter(cfg.CLIPath, cfg.NodeURL, account),
	}
}

// Coordinates resolves where the jukebox module lives. Without an explicit
// module address the module is assumed to be published by the account itself.
func Coordinates(cfg domain.AptosConfig, account Account) (domain.ModuleCoordinates, error) {
	moduleAddress := account.Address
	if cfg.ModuleAddress != "" {
		a, err := ParseAddress(cfg.ModuleAddress)
		if err != nil {
			return domain.ModuleCoordinates{}, err
		}
		moduleAddress = a
	}
	return domain.ModuleCoordinates{
		Address: moduleAddress.String(),
		Module:  cfg.ModuleName,
		Struct:  cfg.StructName,
	}, nil
}

package ports

import "github.com/gabrielcapilla/jukebox-driver/internal/domain"

type ConfigService interface {
	Load() (domain.Config, error)
}

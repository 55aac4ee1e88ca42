package handlerclient

import (
	"net/http"

	"github.com/yusufsyaifudin/fcmpush/pkg/respbuilder"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"github.com/yusufsyaifudin/fcmpush/pkg/webclient"
)

type HandlerConfig struct {
	Bootstrap *webclient.BootstrapConfig `validate:"required"`
}

type Handler struct {
	Config HandlerConfig
}

func NewHandler(cfg HandlerConfig) (*Handler, error) {
	err := validator.Validate(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Bootstrap.ActionMaps == nil {
		cfg.Bootstrap.ActionMaps = []*webclient.ActionMap{}
	}

	if cfg.Bootstrap.Topics == nil {
		cfg.Bootstrap.Topics = []string{}
	}

	return &Handler{Config: cfg}, nil
}

// ClientConfig serves the configuration the browser client boots from.
func (h *Handler) ClientConfig() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := respbuilder.Success(r.Context(), h.Config.Bootstrap)
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}
}

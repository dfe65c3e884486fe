package request

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/gameofchests/internal/model"
)

func intPtr(v int) *int { return &v }

func TestCreateRoomRequestSettings(t *testing.T) {
	tests := []struct {
		name string
		req  CreateRoomRequest
		want model.Settings
	}{
		{"defaults", CreateRoomRequest{}, model.Settings{CoinCount: 5, Compensation: 2}},
		{"explicit", CreateRoomRequest{CoinCount: intPtr(8), Compensation: intPtr(4)}, model.Settings{CoinCount: 8, Compensation: 4}},
		{"zero compensation is kept", CreateRoomRequest{Compensation: intPtr(0)}, model.Settings{CoinCount: 5, Compensation: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Settings())
		})
	}
}

func TestResetGameRequestParams(t *testing.T) {
	current := model.Settings{CoinCount: 8, Compensation: 3}

	assert.Equal(t, current, ResetGameRequest{}.Params().Apply(current))
	assert.Equal(t, model.Settings{CoinCount: 8, Compensation: 5},
		ResetGameRequest{Compensation: intPtr(5)}.Params().Apply(current))
	assert.Equal(t, model.Settings{CoinCount: 6, Compensation: 3},
		ResetGameRequest{CoinCount: intPtr(6)}.Params().Apply(current))
}

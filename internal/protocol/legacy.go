package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Legacy string-command adapter. Older clients speak a line protocol
// ("login u p", "get_cities", "get_maps 3"); this front end translates
// those lines into typed Requests and renders typed Responses back as
// strings, so business handlers only ever see the typed envelope.

type legacyLogin struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type legacyCityID struct {
	CityID int64 `json:"cityId"`
}

// TranslateLegacy parses a legacy command line into a typed Request.
func TranslateLegacy(line string) (*Request, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	id := uuid.NewString()

	switch fields[0] {
	case "login":
		if len(fields) < 3 {
			return nil, fmt.Errorf("login requires username and password")
		}
		payload, _ := json.Marshal(legacyLogin{Username: fields[1], Password: fields[2]})
		return &Request{ID: id, Type: OpLogin, Payload: payload}, nil

	case "get_cities":
		return &Request{ID: id, Type: OpGetCitiesCatalog}, nil

	case "get_maps":
		if len(fields) < 2 {
			return nil, fmt.Errorf("get_maps requires a city id")
		}
		cityID, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid city id %q", fields[1])
		}
		payload, _ := json.Marshal(legacyCityID{CityID: cityID})
		return &Request{ID: id, Type: OpGetCityMaps, Payload: payload}, nil

	case "update_price":
		// Direct price writes were replaced by the pricing approval
		// workflow; legacy clients are told to upgrade.
		return nil, fmt.Errorf("update_price is no longer supported; submit a pricing request")

	default:
		return nil, fmt.Errorf("unknown command %q", fields[0])
	}
}

// RenderLegacy formats a typed Response in the legacy string protocol.
func RenderLegacy(op Op, resp *Response) string {
	if op == OpLogin {
		if !resp.OK {
			return "login_failed"
		}
		// Payload is the auth result; legacy clients expect
		// "login_success <userId> <role>".
		data, _ := json.Marshal(resp.Payload)
		var login struct {
			User struct {
				ID   int64  `json:"id"`
				Role string `json:"role"`
			} `json:"user"`
		}
		if err := json.Unmarshal(data, &login); err != nil || login.User.ID == 0 {
			return "login_failed"
		}
		return fmt.Sprintf("login_success %d %s", login.User.ID, login.User.Role)
	}

	if !resp.OK {
		return fmt.Sprintf("error %s %s", resp.Error.Code, resp.Error.Message)
	}
	data, err := json.Marshal(resp.Payload)
	if err != nil {
		return "error INTERNAL_ERROR unencodable payload"
	}
	return string(data)
}

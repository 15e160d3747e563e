package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ServiceSuffix is the unit type suffix every managed unit carries.
const ServiceSuffix = ".service"

// Unit is a snapshot of one unit as listed by the init manager.
type Unit struct {
	Name        string
	Description string
	LoadState   string
	ActiveState string
	SubState    string
}

// IsService reports whether the unit is a service unit.
func (u Unit) IsService() bool {
	return strings.HasSuffix(u.Name, ServiceSuffix)
}

// ServiceInfo is the view of a service returned to clients. It is built
// from a fresh unit listing on every request.
type ServiceInfo struct {
	Name        string `json:"name"`
	ActiveState string `json:"active_state"`
	SubState    string `json:"sub_state"`
	LoadState   string `json:"load_state"`
}

// NewServiceInfo builds the client view of a unit.
func NewServiceInfo(u Unit) ServiceInfo {
	return ServiceInfo{
		Name:        u.Name,
		ActiveState: u.ActiveState,
		SubState:    u.SubState,
		LoadState:   u.LoadState,
	}
}

// NormalizeUnitName appends the .service suffix unless the name already
// carries it. Normalizing twice is a no-op.
func NormalizeUnitName(name string) string {
	if strings.HasSuffix(name, ServiceSuffix) {
		return name
	}
	return name + ServiceSuffix
}

// ServiceCommand is the closed set of operations a client may request on a
// service. The zero value is not a valid command.
type ServiceCommand int

const (
	CommandStart ServiceCommand = iota + 1
	CommandStop
	CommandRestart
	CommandEnable
	CommandDisable
)

var commandNames = map[ServiceCommand]string{
	CommandStart:   "start",
	CommandStop:    "stop",
	CommandRestart: "restart",
	CommandEnable:  "enable",
	CommandDisable: "disable",
}

// ParseServiceCommand parses the lowercase wire name of a command.
func ParseServiceCommand(s string) (ServiceCommand, error) {
	for cmd, name := range commandNames {
		if name == s {
			return cmd, nil
		}
	}
	return 0, fmt.Errorf("unknown service command %q", s)
}

// Valid reports whether c is one of the defined commands.
func (c ServiceCommand) Valid() bool {
	_, ok := commandNames[c]
	return ok
}

func (c ServiceCommand) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ServiceCommand(%d)", int(c))
}

func (c ServiceCommand) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid service command %d", int(c))
	}
	return json.Marshal(c.String())
}

func (c *ServiceCommand) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("service command must be a string: %w", err)
	}
	parsed, err := ParseServiceCommand(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// UpdateServiceRequest is the body of PUT /services/{name}.
type UpdateServiceRequest struct {
	Command ServiceCommand `json:"command"`
}

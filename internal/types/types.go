// Package types contains shared type definitions used across the ha-generac packages.
package types

// ApparatusTypeGenerator is the apparatus type code for standby generator units.
// Other type codes (propane tank monitors, etc.) are not handled by this client.
const ApparatusTypeGenerator = 0

// Apparatus is a single registered unit as returned by the Apparatus list endpoints.
type Apparatus struct {
	ApparatusID          int    `json:"apparatusId"`
	Type                 int    `json:"type"`
	Name                 string `json:"name"`
	SerialNumber         string `json:"serialNumber"`
	ModelNumber          string `json:"modelNumber"`
	PanelID              string `json:"panelId"`
	LocalizedAddress     string `json:"localizedAddress"`
	PreferredDealerName  string `json:"preferredDealerName"`
	PreferredDealerEmail string `json:"preferredDealerEmail"`
	PreferredDealerPhone string `json:"preferredDealerPhone"`
}

// ApparatusDetail is the per-apparatus detail record. The v5 and the legacy v1
// endpoints return the same shape; only the property type codes differ.
type ApparatusDetail struct {
	ApparatusStatus     *int       `json:"apparatusStatus"`
	DeviceType          string     `json:"deviceType"`
	DeviceSsid          string     `json:"deviceSsid"`
	StatusLabel         string     `json:"statusLabel"`
	StatusText          string     `json:"statusText"`
	ActivationDate      string     `json:"activationDate"`
	LastSeen            string     `json:"lastSeen"`
	ConnectionTimestamp string     `json:"connectionTimestamp"`
	NetworkType         string     `json:"networkType"`
	CurrentAlarm        string     `json:"currentAlarm"`
	Properties          []Property `json:"properties"`
	Weather             *Weather   `json:"weather"`
}

// Property is one entry of the untyped detail property list. Value is either a
// JSON string or a JSON number depending on the API generation.
type Property struct {
	Name  string `json:"name"`
	Type  int    `json:"type"`
	Value any    `json:"value"`
}

// Weather is the optional weather block attached to a detail record.
type Weather struct {
	Temperature *WeatherTemperature `json:"temperature"`
}

// WeatherTemperature carries the outdoor temperature near the apparatus.
type WeatherTemperature struct {
	Value *float64 `json:"value"`
	Unit  string   `json:"unit"`
}

// Item pairs an apparatus with its detail record. Items are built once per
// fetch cycle and replaced wholesale on the next one.
type Item struct {
	Apparatus Apparatus
	Detail    ApparatusDetail
}

// SignInConfig is the subset of the SETTINGS blob embedded in the B2C sign-in
// page that the login flow needs. Both fields are required to proceed.
type SignInConfig struct {
	Csrf    string `json:"csrf"`
	TransID string `json:"transId"`
}

// SelfAssertedResult is the JSON body of the SelfAsserted credential check.
// Status "200" means the credentials were accepted.
type SelfAssertedResult struct {
	Status string `json:"status"`
}

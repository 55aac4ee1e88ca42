package webclient

import (
	"github.com/yusufsyaifudin/fcmpush/pkg/serializer"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
)

// FirebaseConfig is the web app configuration of a Firebase project.
// JSON and SDK forms use camelCase keys, the serializer projection uses snake_case.
type FirebaseConfig struct {
	APIKey            string `json:"apiKey" yaml:"apiKey"`
	AuthDomain        string `json:"authDomain" yaml:"authDomain"`
	ProjectID         string `json:"projectId" yaml:"projectId"`
	StorageBucket     string `json:"storageBucket" yaml:"storageBucket"`
	MessagingSenderID string `json:"messagingSenderId" yaml:"messagingSenderId"`
	AppID             string `json:"appId" yaml:"appId"`
	MeasurementID     string `json:"measurementId" yaml:"measurementId"`
}

var _ serializer.Projector = (*FirebaseConfig)(nil)

func NewFirebaseConfig(in FirebaseConfig) (*FirebaseConfig, error) {
	c := in
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// FirebaseConfigFromMap reads the camelCase map the Web SDK uses.
func FirebaseConfigFromMap(m map[string]interface{}) (*FirebaseConfig, error) {
	c := FirebaseConfig{}
	targets := []struct {
		key string
		dst *string
	}{
		{"apiKey", &c.APIKey},
		{"authDomain", &c.AuthDomain},
		{"projectId", &c.ProjectID},
		{"storageBucket", &c.StorageBucket},
		{"messagingSenderId", &c.MessagingSenderID},
		{"appId", &c.AppID},
		{"measurementId", &c.MeasurementID},
	}

	for _, t := range targets {
		s, err := validator.String(m[t.key], t.key, false)
		if err != nil {
			return nil, err
		}

		*t.dst = s
	}

	return NewFirebaseConfig(c)
}

// Validate reports the first empty field using its snake_case name.
func (c *FirebaseConfig) Validate() error {
	for _, f := range c.Fields() {
		s, _ := f.Value.(string)
		var v interface{}
		if s != "" {
			v = s
		}

		if _, err := validator.String(v, f.Name, false); err != nil {
			return err
		}
	}

	return nil
}

func (c *FirebaseConfig) Fields() []serializer.Field {
	return []serializer.Field{
		serializer.F("api_key", c.APIKey),
		serializer.F("auth_domain", c.AuthDomain),
		serializer.F("project_id", c.ProjectID),
		serializer.F("storage_bucket", c.StorageBucket),
		serializer.F("messaging_sender_id", c.MessagingSenderID),
		serializer.F("app_id", c.AppID),
		serializer.F("measurement_id", c.MeasurementID),
	}
}

// SDKMap returns the config keyed the way firebase.initializeApp expects.
func (c *FirebaseConfig) SDKMap() map[string]interface{} {
	return map[string]interface{}{
		"apiKey":            c.APIKey,
		"authDomain":        c.AuthDomain,
		"projectId":         c.ProjectID,
		"storageBucket":     c.StorageBucket,
		"messagingSenderId": c.MessagingSenderID,
		"appId":             c.AppID,
		"measurementId":     c.MeasurementID,
	}
}

package arena

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

// ItemSummary is one row of the paginated item listing.
type ItemSummary struct {
	GUID   string `mapstructure:"guid" json:"guid"`
	Number string `mapstructure:"number" json:"number"`
	Name   string `mapstructure:"name" json:"name"`
}

type Named struct {
	GUID string `mapstructure:"guid" json:"guid,omitempty"`
	Name string `mapstructure:"name" json:"name"`
}

// Attribute is one custom ("additional") attribute of an item.
type Attribute struct {
	APIName string `mapstructure:"apiName" json:"apiName,omitempty"`
	Name    string `mapstructure:"name" json:"name"`
	Value   string `mapstructure:"value" json:"value"`
}

// Item is the full detail record of a PLM item.
type Item struct {
	GUID                 string      `mapstructure:"guid" json:"guid"`
	Number               string      `mapstructure:"number" json:"number"`
	Name                 string      `mapstructure:"name" json:"name"`
	RevisionNumber       string      `mapstructure:"revisionNumber" json:"revisionNumber"`
	Description          string      `mapstructure:"description" json:"description"`
	UOM                  string      `mapstructure:"uom" json:"uom"`
	Category             Named       `mapstructure:"category" json:"category"`
	LifecyclePhase       Named       `mapstructure:"lifecyclePhase" json:"lifecyclePhase"`
	AdditionalAttributes []Attribute `mapstructure:"additionalAttributes" json:"additionalAttributes"`
}

type ItemRef struct {
	GUID   string `mapstructure:"guid" json:"guid,omitempty"`
	Number string `mapstructure:"number" json:"number"`
	Name   string `mapstructure:"name" json:"name,omitempty"`
}

// BOMLine is one component row of an item's bill of materials.
// Change-item records share this shape.
type BOMLine struct {
	GUID       string          `mapstructure:"guid" json:"guid,omitempty"`
	Item       ItemRef         `mapstructure:"item" json:"item"`
	Quantity   decimal.Decimal `mapstructure:"quantity" json:"quantity"`
	LineNumber int             `mapstructure:"lineNumber" json:"lineNumber,omitempty"`
	RefDes     string          `mapstructure:"refDes" json:"refDes,omitempty"`
}

type ManufacturerItem struct {
	GUID     string `mapstructure:"guid" json:"guid,omitempty"`
	Number   string `mapstructure:"number" json:"number"`
	Supplier Named  `mapstructure:"supplier" json:"supplier"`
}

// Sourcing links an item to an approved manufacturer part.
type Sourcing struct {
	ManufacturerItem ManufacturerItem `mapstructure:"manufacturerItem" json:"manufacturerItem"`
}

type Change struct {
	GUID            string `mapstructure:"guid" json:"guid"`
	Number          string `mapstructure:"number" json:"number"`
	Title           string `mapstructure:"title" json:"title"`
	LifecycleStatus struct {
		Type string `mapstructure:"type" json:"type"`
	} `mapstructure:"lifecycleStatus" json:"lifecycleStatus"`
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// toDecimalHook accepts JSON numbers and numeric strings for decimal fields.
func toDecimalHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if t != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case nil:
		return decimal.Zero, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case string:
		if v == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(v)
	default:
		return nil, fmt.Errorf("cannot decode %T into decimal", data)
	}
}

// attributeValueHook flattens attribute values: booleans become Yes/No, lists
// and selections become their display name.
func attributeValueHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if t.Kind() != reflect.String {
		return data, nil
	}
	switch v := data.(type) {
	case bool:
		if v {
			return "Yes", nil
		}
		return "No", nil
	case map[string]interface{}:
		if name, ok := v["name"]; ok {
			return fmt.Sprint(name), nil
		}
		if val, ok := v["value"]; ok {
			return fmt.Sprint(val), nil
		}
		return "", nil
	case nil:
		return "", nil
	}
	return data, nil
}

func decode(input interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			toDecimalHook,
			attributeValueHook,
		),
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// decodeResults decodes the "results" array of a list response.
func decodeResults(payload map[string]interface{}, out interface{}) error {
	results, ok := payload["results"]
	if !ok || results == nil {
		results = []interface{}{}
	}
	return decode(results, out)
}

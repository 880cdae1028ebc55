package trajectory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Frequency is a pitch sample in Hz. The backend marks unvoiced frames with
// the string "NaN"; those decode to math.NaN().
type Frequency float64

// Valid reports whether f can be placed on a log axis.
func (f Frequency) Valid() bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func (f *Frequency) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = Frequency(math.NaN())
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.EqualFold(strings.TrimSpace(s), "nan") {
			*f = Frequency(math.NaN())
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("frequency %q: %w", s, err)
		}
		*f = Frequency(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Frequency(v)
	return nil
}

// MarshalJSON writes non-finite values as "NaN", the only unplottable
// marker the backend uses.
func (f Frequency) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(v)
}

// Sample is one point of a pitch track. Time is normalized to [0,1].
type Sample struct {
	Time      float64   `json:"time"`
	Frequency Frequency `json:"frequency"`
}

// Dataset is the payload of the get-pitch-json endpoint.
type Dataset struct {
	Data         []Sample `json:"data"`
	MinFrequency float64  `json:"min_frequency"`
	MaxFrequency float64  `json:"max_frequency"`
}

// Decode parses a Dataset from JSON.
func Decode(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode pitch dataset: %w", err)
	}
	return &ds, nil
}

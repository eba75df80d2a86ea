package toolserver

import (
	"context"
	"encoding/json"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/petasbytes/mcp-agent/internal/textstats"
	"github.com/petasbytes/mcp-agent/tools"
)

// now is replaced in tests.
var now = time.Now

var EpochTimeDefinition = tools.ToolDefinition{
	Name: "get_epoch_time",
	Description: `Get the current Unix epoch time in seconds.

Returns the number of seconds that have elapsed since January 1, 1970 (UTC).`,
	InputSchema: tools.GenerateSchema[struct{}](),
	Function:    EpochTime,
}

// EpochTime returns the current Unix time in whole seconds.
func EpochTime(_ context.Context, _ json.RawMessage) (string, error) {
	return strconv.FormatInt(now().Unix(), 10), nil
}

type CountCharactersInput struct {
	Word string `json:"word" jsonschema_description:"The text to count characters in"`
}

var CountCharactersDefinition = tools.ToolDefinition{
	Name:        "count_characters",
	Description: "Count the number of characters in a word or text. Returns total, non-whitespace, alphabetic, digit and special character counts.",
	InputSchema: tools.GenerateSchema[CountCharactersInput](),
	Function:    CountCharacters,
}

// CountCharacters classifies the characters of the word argument.
func CountCharacters(_ context.Context, input json.RawMessage) (string, error) {
	var in CountCharactersInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", errors.Wrap(err, "invalid arguments")
	}
	b, err := json.Marshal(textstats.CountCharacters(in.Word))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type WeatherInput struct {
	Location string `json:"location" jsonschema_description:"City name or location (e.g., \"Tokyo\", \"New York\")"`
}

// Weather is the reading returned by get_weather.
type Weather struct {
	Location    string  `json:"location"`
	Temperature int     `json:"temperature"`
	Condition   string  `json:"condition"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Timestamp   int64   `json:"timestamp"`
}

var WeatherDefinition = tools.ToolDefinition{
	Name:        "get_weather",
	Description: "Get current weather information for a location.",
	InputSchema: tools.GenerateSchema[WeatherInput](),
	Function:    GetWeather,
}

var knownWeather = []struct {
	match string
	w     Weather
}{
	{"tokyo", Weather{Location: "Tokyo, Japan", Temperature: 26, Condition: "Partly Cloudy", Humidity: 75, WindSpeed: 5.2}},
	{"new york", Weather{Location: "New York, USA", Temperature: 18, Condition: "Clear", Humidity: 62, WindSpeed: 4.1}},
	{"london", Weather{Location: "London, UK", Temperature: 14, Condition: "Light Rain", Humidity: 85, WindSpeed: 7.8}},
}

var conditions = []string{"Sunny", "Partly Cloudy", "Cloudy", "Light Rain", "Heavy Rain", "Thunderstorm", "Snow", "Fog"}

// GetWeather returns a mock reading: fixed for a few cities, random otherwise.
func GetWeather(_ context.Context, input json.RawMessage) (string, error) {
	var in WeatherInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", errors.Wrap(err, "invalid arguments")
	}
	if strings.TrimSpace(in.Location) == "" {
		return "", errors.New("location is required")
	}

	w := randomWeather(in.Location)
	lower := strings.ToLower(in.Location)
	for _, k := range knownWeather {
		if strings.Contains(lower, k.match) {
			w = k.w
			break
		}
	}
	w.Timestamp = now().Unix()

	b, err := json.Marshal(w)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func randomWeather(location string) Weather {
	return Weather{
		Location:    location,
		Temperature: 5 + rand.IntN(31),
		Condition:   conditions[rand.IntN(len(conditions))],
		Humidity:    40 + rand.IntN(56),
		WindSpeed:   math.Round(rand.Float64()*120) / 10,
	}
}

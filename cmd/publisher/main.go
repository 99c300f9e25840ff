package main

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nandanugg/geotrack/config"
)

type locationMessage struct {
	AssetID   string  `json:"asset_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

// orbit moves an asset on a circle around the center whose radius swings
// between zero and twice the fence radius, so it keeps crossing in and out.
type orbit struct {
	assetID string
	bearing float64
	phase   float64
}

// metersPerDegree is the length of one degree of latitude.
const metersPerDegree = 111320.0

func (o *orbit) next(centerLat, centerLon, fenceRadius float64) (float64, float64) {
	o.phase += 0.3 + rand.Float64()*0.2
	o.bearing += (rand.Float64() - 0.5) * 0.4
	dist := fenceRadius * (1 - math.Cos(o.phase))

	dLat := dist * math.Cos(o.bearing) / metersPerDegree
	dLon := dist * math.Sin(o.bearing) / (metersPerDegree * math.Cos(centerLat*math.Pi/180))
	return centerLat + dLat, centerLon + dLon
}

func envFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds> <asset_id>...\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	cfg := config.Load()
	cfg.MQTTClientID = "geotrack-mock-publisher"
	config.SetupLogger(cfg)

	centerLat := envFloat("CENTER_LAT", -6.2088)
	centerLon := envFloat("CENTER_LON", 106.8456)
	fenceRadius := envFloat("FENCE_RADIUS", 50)

	client, err := config.NewMQTT(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt")
	}
	defer client.Disconnect(250)

	orbits := make([]*orbit, 0, len(os.Args)-2)
	for _, id := range os.Args[2:] {
		orbits = append(orbits, &orbit{assetID: id, bearing: rand.Float64() * 2 * math.Pi, phase: rand.Float64() * 2 * math.Pi})
	}

	log.Info().Str("broker", cfg.MQTTBroker).Int("interval_s", intervalSec).Int("assets", len(orbits)).Msg("publishing")

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		o := orbits[rand.Intn(len(orbits))]
		lat, lon := o.next(centerLat, centerLon, fenceRadius)

		msg := locationMessage{
			AssetID:   o.assetID,
			Latitude:  lat,
			Longitude: lon,
			Timestamp: time.Now().Unix(),
		}

		payload, _ := json.Marshal(msg)
		topic := fmt.Sprintf("/fleet/asset/%s/location", o.assetID)

		token := client.Publish(topic, 1, false, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("publish")
			continue
		}

		log.Info().Str("topic", topic).RawJSON("payload", payload).Msg("published")
	}
}

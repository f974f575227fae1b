// Command genmock writes small synthetic fixtures for local runs: a labeled
// PNG tree in the positive/negative layout read by "cyclone dataset" and a raw
// IBTrACS-format CSV, units row included, read by "cyclone ibtracs".
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -images-dir data/mock/images \
//	  -tracks-out data/mock/ibtracs_NA.csv \
//	  -n 20
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/cyclone-imagery/internal/adapter/ibtracs"
	"github.com/couchcryptid/cyclone-imagery/internal/dataset"
	"github.com/couchcryptid/cyclone-imagery/internal/domain"
	"github.com/disintegration/imaging"
)

const (
	imageSize = 64

	unitsRow = " ,Year, , , , ,degrees_north,degrees_east,kts,mb, ,km,km, ,kts,degrees"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	imagesDir := flag.String("images-dir", "", "output directory for the positive/ and negative/ PNG tree")
	tracksOut := flag.String("tracks-out", "", "output path for the IBTrACS CSV")
	n := flag.Int("n", 20, "images per class")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	if *imagesDir == "" || *tracksOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -images-dir, -tracks-out")
	}

	rng := rand.New(rand.NewSource(*seed))

	if err := writeImages(*imagesDir, *n, rng); err != nil {
		return fmt.Errorf("writing images: %w", err)
	}
	log.Printf("wrote %d positive and %d negative images under %s", *n, *n, *imagesDir)

	tracks := syntheticTracks()
	if err := writeRawTracks(*tracksOut, tracks); err != nil {
		return fmt.Errorf("writing tracks: %w", err)
	}
	log.Printf("wrote %d track observations to %s", len(tracks), *tracksOut)
	return nil
}

func writeImages(dir string, n int, rng *rand.Rand) error {
	for _, class := range []string{dataset.PositiveDir, dataset.NegativeDir} {
		if err := os.MkdirAll(filepath.Join(dir, class), 0o755); err != nil {
			return err
		}
	}
	for i := 0; i < n; i++ {
		pos := filepath.Join(dir, dataset.PositiveDir, fmt.Sprintf("storm_%04d.png", i))
		if err := imaging.Save(vortex(rng), pos); err != nil {
			return err
		}
		neg := filepath.Join(dir, dataset.NegativeDir, fmt.Sprintf("clear_%04d.png", i))
		if err := imaging.Save(noise(rng), neg); err != nil {
			return err
		}
	}
	return nil
}

// vortex draws a bright spiral cloud band around a dark eye at a random offset.
func vortex(rng *rand.Rand) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, imageSize, imageSize))
	cx := imageSize/2 + rng.Intn(11) - 5
	cy := imageSize/2 + rng.Intn(11) - 5
	for y := 0; y < imageSize; y++ {
		for x := 0; x < imageSize; x++ {
			dx, dy := float64(x-cx), float64(y-cy)
			r := math.Hypot(dx, dy)
			arm := 0.5 + 0.5*math.Cos(2*math.Atan2(dy, dx)-r/4)
			v := 255 * arm * math.Exp(-r/20)
			if r < 2.5 {
				v = 30
			}
			v += float64(rng.Intn(20))
			img.SetGray(x, y, color.Gray{Y: uint8(math.Min(v, 255))})
		}
	}
	return img
}

// noise draws scattered low cloud over a dark background.
func noise(rng *rand.Rand) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, imageSize, imageSize))
	for i := range img.Pix {
		img.Pix[i] = uint8(20 + rng.Intn(60))
	}
	return img
}

func syntheticTracks() []domain.TrackRecord {
	type storm struct {
		sid, name     string
		season, num   int
		start         time.Time
		lat, lon      float64
		dLat, dLon    float64
		observations  int
		wind, minPres int
	}
	storms := []storm{
		{"2016233N12330", "GASTON", 2016, 70, time.Date(2016, 8, 22, 12, 0, 0, 0, time.UTC), 12.1, -29.4, 1.1, -1.6, 6, 60, 985},
		{"2017228N14314", "HARVEY", 2017, 68, time.Date(2017, 8, 25, 0, 0, 0, 0, time.UTC), 24.4, -93.6, 0.6, -0.5, 8, 115, 937},
		{"2017242N16333", "IRMA", 2017, 75, time.Date(2017, 9, 6, 0, 0, 0, 0, time.UTC), 17.4, -61.1, 0.3, -1.4, 8, 160, 914},
		{"2018242N13343", "MANGKHUT", 2018, 60, time.Date(2018, 9, 14, 0, 0, 0, 0, time.UTC), 17.2, 127.4, 0.3, -1.1, 4, 155, 905},
	}

	var recs []domain.TrackRecord
	for _, s := range storms {
		for i := 0; i < s.observations; i++ {
			recs = append(recs, domain.TrackRecord{
				SID:        s.sid,
				Season:     s.season,
				Number:     s.num,
				Name:       s.name,
				ISOTime:    s.start.Add(time.Duration(i) * 6 * time.Hour),
				Nature:     "TS",
				Lat:        math.Round((s.lat+float64(i)*s.dLat)*10) / 10,
				Lon:        math.Round((s.lon+float64(i)*s.dLon)*10) / 10,
				WMOWind:    fmt.Sprint(s.wind),
				WMOPres:    fmt.Sprint(s.minPres),
				TrackType:  "main",
				Dist2Land:  fmt.Sprint(100 * (s.observations - i)),
				Landfall:   fmt.Sprint(100 * (s.observations - i)),
				IFlag:      "O_____________",
				StormSpeed: "10",
				StormDir:   "290",
			})
		}
	}
	return recs
}

// writeRawTracks writes recs the way NCEI publishes them: header, units row, data.
func writeRawTracks(path string, recs []domain.TrackRecord) error {
	var buf bytes.Buffer
	if err := ibtracs.WriteTracks(&buf, recs); err != nil {
		return err
	}
	header, body, _ := strings.Cut(buf.String(), "\n")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data := header + "\n" + unitsRow + "\n" + body
	return os.WriteFile(path, []byte(data), 0o600)
}

package dataset

import (
	"errors"
	"fmt"

	"github.com/montanaflynn/stats"
)

// NormParams are the mean and population standard deviation of a tensor.
type NormParams struct {
	Mean float64
	Std  float64
}

// Normalize computes the mean and standard deviation over every element of t
// and returns a copy of t with (x-mean)/std applied.
func Normalize(t Tensor) (NormParams, Tensor, error) {
	if len(t.Data) == 0 {
		return NormParams{}, Tensor{}, errors.New("normalize: empty tensor")
	}

	data := make(stats.Float64Data, len(t.Data))
	for i, v := range t.Data {
		data[i] = float64(v)
	}

	mu, err := stats.Mean(data)
	if err != nil {
		return NormParams{}, Tensor{}, fmt.Errorf("normalize: %w", err)
	}
	sigma, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return NormParams{}, Tensor{}, fmt.Errorf("normalize: %w", err)
	}
	if sigma == 0 {
		return NormParams{}, Tensor{}, errors.New("normalize: zero standard deviation")
	}

	out := t
	out.Data = make([]float32, len(t.Data))
	for i, v := range data {
		out.Data[i] = float32((v - mu) / sigma)
	}
	return NormParams{Mean: mu, Std: sigma}, out, nil
}

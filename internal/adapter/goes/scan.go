package goes

import (
	"errors"
	"fmt"
	"math"

	"github.com/spf13/afero"
	"gonum.org/v1/hdf5"
)

// Dataset is an opened scan file.
type Dataset interface {
	// ObjectNames lists the root-level groups and variables.
	ObjectNames() ([]string, error)
	// ReadVariable reads a numeric root-level variable with its packing applied.
	ReadVariable(name string) (Variable, error)
	Close() error
}

// Opener opens the scan stored at path.
type Opener func(path string) (Dataset, error)

// Variable holds the values of one scan variable in row-major order.
type Variable struct {
	Name string
	Dims []uint
	Data []float32
}

// Scan is a downloaded GOES scan held in a temporary file.
type Scan struct {
	Key     string
	Path    string
	Dataset Dataset

	fs afero.Fs
}

// Variables lists the root-level objects of the scan.
func (s *Scan) Variables() ([]string, error) {
	return s.Dataset.ObjectNames()
}

// Variable reads the named variable, e.g. "Rad" for radiance.
func (s *Scan) Variable(name string) (Variable, error) {
	return s.Dataset.ReadVariable(name)
}

// Close closes the dataset and removes the temporary file.
func (s *Scan) Close() error {
	return errors.Join(s.Dataset.Close(), s.fs.Remove(s.Path))
}

// packing holds the CF attributes that map stored integers to physical values.
type packing struct {
	scale, offset float32
	fill          float32
	hasFill       bool
}

var noPacking = packing{scale: 1}

// apply unpacks data in place. Fill values become NaN.
func (p packing) apply(data []float32) {
	nan := float32(math.NaN())
	for i, v := range data {
		if p.hasFill && v == p.fill {
			data[i] = nan
			continue
		}
		data[i] = v*p.scale + p.offset
	}
}

// hdf5Dataset reads NetCDF-4 files, which are HDF5 containers.
type hdf5Dataset struct {
	f *hdf5.File
}

// OpenHDF5 opens path read-only with the HDF5 library.
func OpenHDF5(path string) (Dataset, error) {
	if !hdf5.IsHDF5(path) {
		return nil, fmt.Errorf("%s is not an HDF5 file", path)
	}
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, err
	}
	return hdf5Dataset{f: f}, nil
}

func (d hdf5Dataset) ObjectNames() ([]string, error) {
	n, err := d.f.NumObjects()
	if err != nil {
		return nil, fmt.Errorf("count objects: %w", err)
	}
	names := make([]string, 0, n)
	for i := uint(0); i < n; i++ {
		name, err := d.f.ObjectNameByIndex(i)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		names = append(names, name)
	}
	return names, nil
}

func (d hdf5Dataset) ReadVariable(name string) (Variable, error) {
	ds, err := d.f.OpenDataset(name)
	if err != nil {
		return Variable{}, fmt.Errorf("open variable %s: %w", name, err)
	}
	defer ds.Close()

	space := ds.Space()
	if space == nil {
		return Variable{}, fmt.Errorf("variable %s: no dataspace", name)
	}
	defer space.Close()

	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return Variable{}, fmt.Errorf("variable %s: dims: %w", name, err)
	}

	data, err := readValues(ds, space.SimpleExtentNPoints())
	if err != nil {
		return Variable{}, fmt.Errorf("read variable %s: %w", name, err)
	}
	packingOf(ds).apply(data)

	return Variable{Name: name, Dims: dims, Data: data}, nil
}

func (d hdf5Dataset) Close() error {
	return d.f.Close()
}

// readValues reads every element of ds as float32. Dataset.Read copies in the
// stored type, so the buffer must match it.
func readValues(ds *hdf5.Dataset, n int) ([]float32, error) {
	dtype, err := ds.Datatype()
	if err != nil {
		return nil, err
	}
	defer dtype.Close()

	switch class, size := dtype.Class(), dtype.Size(); {
	case class == hdf5.T_INTEGER && size == 1:
		return readAs[int8](ds, n)
	case class == hdf5.T_INTEGER && size == 2:
		return readAs[int16](ds, n)
	case class == hdf5.T_INTEGER && size == 4:
		return readAs[int32](ds, n)
	case class == hdf5.T_FLOAT && size == 4:
		return readAs[float32](ds, n)
	case class == hdf5.T_FLOAT && size == 8:
		return readAs[float64](ds, n)
	default:
		return nil, fmt.Errorf("unsupported type class %d size %d", class, size)
	}
}

func readAs[T int8 | int16 | int32 | float32 | float64](ds *hdf5.Dataset, n int) ([]float32, error) {
	raw := make([]T, n)
	if err := ds.Read(&raw); err != nil {
		return nil, err
	}
	out := make([]float32, n)
	for i, v := range raw {
		out[i] = float32(v)
	}
	return out, nil
}

func packingOf(ds *hdf5.Dataset) packing {
	p := noPacking
	if v, ok := floatAttr(ds, "scale_factor"); ok {
		p.scale = v
	}
	if v, ok := floatAttr(ds, "add_offset"); ok {
		p.offset = v
	}
	p.fill, p.hasFill = floatAttr(ds, "_FillValue")
	return p
}

func floatAttr(ds *hdf5.Dataset, name string) (float32, bool) {
	attr, err := ds.OpenAttribute(name)
	if err != nil {
		return 0, false
	}
	defer attr.Close()

	var v float32
	if err := attr.Read(&v, hdf5.T_NATIVE_FLOAT); err != nil {
		return 0, false
	}
	return v, true
}

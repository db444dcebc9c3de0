package cvtrack

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Seed is an initial target given to a MultiTracker
type Seed struct {
	Variant Variant
	Region  Region
}

// LoadSeeds reads tracker seeds from the given text file.  It should contain
// one seed per line in the format "x,y,width,height[,variant]".  Lines
// without a variant use def.  Blank lines and lines starting with # are
// skipped
func LoadSeeds(file string, def Variant) ([]Seed, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	return ReadSeeds(f, def)
}

// ReadSeeds reads tracker seeds in the LoadSeeds format from r
func ReadSeeds(r io.Reader, def Variant) ([]Seed, error) {

	scanner := bufio.NewScanner(r)

	var seeds []Seed
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		seed, err := ParseSeed(line, def)

		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		seeds = append(seeds, seed)
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading seeds: %w", err)
	}

	return seeds, nil
}

// ParseSeed parses a single "x,y,width,height[,variant]" seed
func ParseSeed(s string, def Variant) (Seed, error) {

	fields := strings.Split(s, ",")

	if len(fields) != 4 && len(fields) != 5 {
		return Seed{}, fmt.Errorf("%w: expected x,y,width,height[,variant] got %q",
			ErrInvalidArgument, s)
	}

	var nums [4]float64

	for i := 0; i < 4; i++ {
		n, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)

		if err != nil {
			return Seed{}, fmt.Errorf("%w: invalid number %q", ErrInvalidArgument, fields[i])
		}

		nums[i] = n
	}

	seed := Seed{
		Variant: def,
		Region:  R(nums[0], nums[1], nums[2], nums[3]),
	}

	if len(fields) == 5 {
		v, err := ParseVariant(fields[4])

		if err != nil {
			return Seed{}, err
		}

		seed.Variant = v
	}

	if err := seed.Region.Validate(); err != nil {
		return Seed{}, err
	}

	return seed, nil
}

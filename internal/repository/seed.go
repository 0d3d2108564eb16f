package repository

import (
	"fmt"
	"os"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"gopkg.in/yaml.v3"
)

// Seed is reference data for the memory driver, read from YAML.
type Seed struct {
	Airports []struct {
		Code   string `yaml:"code"`
		Name   string `yaml:"name"`
		City   string `yaml:"city"`
		GateNo string `yaml:"gate_no"`
	} `yaml:"airports"`
	Clients []struct {
		ID        int64  `yaml:"id"`
		FirstName string `yaml:"fname"`
		LastName  string `yaml:"lname"`
		Email     string `yaml:"email"`
	} `yaml:"clients"`
	Flights []struct {
		FlightNo      int64     `yaml:"flight_no"`
		Airline       string    `yaml:"airline"`
		From          string    `yaml:"from"`
		To            string    `yaml:"to"`
		AirplaneID    int64     `yaml:"airplane_id"`
		AirplaneModel string    `yaml:"airplane_model"`
		ScheduleID    int64     `yaml:"schedule_id"`
		DepartureTime time.Time `yaml:"departure_time"`
		ArrivalTime   time.Time `yaml:"arrival_time"`
		BaseFare      float64   `yaml:"base_fare"`
		Status        string    `yaml:"status"`
	} `yaml:"flights"`
}

func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &s, nil
}

// Apply loads the seed into the memory repositories.
func (s *Seed) Apply(flights *MemoryFlightRepository, refs *MemoryReferenceRepository) error {
	for _, a := range s.Airports {
		refs.PutAirport(domain.Airport{Code: a.Code, Name: a.Name, City: a.City, GateNo: a.GateNo})
	}
	for _, c := range s.Clients {
		refs.PutClient(domain.Client{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName, Email: c.Email})
	}
	for _, f := range s.Flights {
		status := domain.FlightStatus(f.Status)
		if status == "" {
			status = domain.FlightStatusOnTime
		}
		if !status.Valid() {
			return fmt.Errorf("flight %d: unknown status %q", f.FlightNo, f.Status)
		}
		flights.Put(domain.Flight{
			FlightNo:      f.FlightNo,
			Airline:       f.Airline,
			FromAirport:   f.From,
			ToAirport:     f.To,
			AirplaneID:    f.AirplaneID,
			AirplaneModel: f.AirplaneModel,
			ScheduleID:    f.ScheduleID,
			DepartureTime: f.DepartureTime,
			ArrivalTime:   f.ArrivalTime,
			BaseFare:      f.BaseFare,
			Status:        status,
			UpdatedAt:     time.Now(),
		})
	}
	return nil
}

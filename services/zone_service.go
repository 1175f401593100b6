package services

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"safetrail/models"
	"safetrail/repositories"
	"safetrail/utils"
)

// ZoneService classifies locations against the known safety zones and
// manages the zone catalog.
type ZoneService struct {
	zoneRepo *repositories.ZoneRepository
}

func NewZoneService(zoneRepo *repositories.ZoneRepository) *ZoneService {
	return &ZoneService{
		zoneRepo: zoneRepo,
	}
}

// Classify tests a location against every zone, most restrictive
// first, and returns the first containing zone. A location matching no
// zone classifies as caution.
func (zs *ZoneService) Classify(ctx context.Context, location models.Coordinate) (models.ZoneClassification, error) {
	zones, err := zs.zoneRepo.GetAllOrdered(ctx)
	if err != nil {
		logrus.Errorf("Zone classification failed to load zones: %v", err)
		return models.ZoneClassification{}, utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to load safety zones", err)
	}

	return ClassifyAgainst(zones, location), nil
}

// ClassifyAgainst runs the classification over an already loaded,
// priority-ordered zone list. The geofence monitor uses this form to
// avoid reloading zones on every sample.
func ClassifyAgainst(zones []models.SafetyZone, location models.Coordinate) models.ZoneClassification {
	for i := range zones {
		zone := &zones[i]
		if len(zone.Coordinates) < 3 {
			continue
		}
		if utils.IsPointInPolygon(location.Latitude, location.Longitude, zone.Coordinates) {
			return models.ZoneClassification{
				Success:      true,
				SafetyLevel:  zone.SafetyLevel,
				IsInSafeZone: zone.SafetyLevel == models.SafetyLevelSafe,
				Zone:         zone,
			}
		}
	}

	// Unknown territory is treated with caution, not as safe.
	return models.ZoneClassification{
		Success:      true,
		SafetyLevel:  models.SafetyLevelCaution,
		IsInSafeZone: false,
		Zone:         nil,
	}
}

// EmergencyServices returns the services attached to the zone
// containing the location. Locations outside all zones get an empty
// list; the caller falls back to the national numbers.
func (zs *ZoneService) EmergencyServices(ctx context.Context, location models.Coordinate) ([]models.EmergencyServicePoint, error) {
	classification, err := zs.Classify(ctx, location)
	if err != nil {
		return nil, err
	}
	if classification.Zone == nil {
		return []models.EmergencyServicePoint{}, nil
	}
	return classification.Zone.EmergencyServices, nil
}

func (zs *ZoneService) ListZones(ctx context.Context) ([]models.SafetyZone, error) {
	zones, err := zs.zoneRepo.GetAllOrdered(ctx)
	if err != nil {
		return nil, utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to list safety zones", err)
	}
	return zones, nil
}

func (zs *ZoneService) GetZone(ctx context.Context, zoneID string) (*models.SafetyZone, error) {
	zone, err := zs.zoneRepo.GetByID(ctx, zoneID)
	if err != nil {
		if err.Error() == "not found" {
			return nil, utils.NewServiceErrorWithStatus(models.ErrCodeNotFound, "safety zone not found", http.StatusNotFound)
		}
		return nil, utils.NewServiceErrorWithStatus(models.ErrCodeValidation, err.Error(), http.StatusBadRequest)
	}
	return zone, nil
}

func (zs *ZoneService) CreateZone(ctx context.Context, req models.CreateZoneRequest) (*models.SafetyZone, error) {
	for _, c := range req.Coordinates {
		if !utils.IsValidCoordinate(c.Latitude, c.Longitude) {
			return nil, utils.NewServiceErrorWithStatus(models.ErrCodeValidation, "zone contains an invalid coordinate", http.StatusBadRequest)
		}
	}

	zone := &models.SafetyZone{
		Name:              req.Name,
		SafetyLevel:       req.SafetyLevel,
		Coordinates:       req.Coordinates,
		EmergencyServices: req.EmergencyServices,
		Description:       req.Description,
		SafetyFeatures:    req.SafetyFeatures,
		RiskFactors:       req.RiskFactors,
		Priority:          req.Priority,
	}

	if err := zs.zoneRepo.Create(ctx, zone); err != nil {
		return nil, utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to create safety zone", err)
	}

	logrus.Infof("Created safety zone %s (%s)", zone.Name, zone.SafetyLevel)
	return zone, nil
}

// internal/app/store/lights/lightstore.go
package lightstore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/devicehub/internal/app/system/color"
	"github.com/dalemusser/devicehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/devicehub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrDuplicateLight = errors.New("a light with this ip already exists")
	ErrInvalidLight   = errors.New("invalid light")
	ErrNotFound       = errors.New("light not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.CollectionLights)}
}

// Filter narrows List and FindOne. Zero fields are ignored.
type Filter struct {
	IP        string
	Name      string // matched case/diacritic-insensitively
	IsDefault *bool
}

func (f Filter) bson() bson.M {
	m := bson.M{}
	if f.IP != "" {
		m["ip"] = f.IP
	}
	if f.Name != "" {
		m["name_ci"] = text.Fold(f.Name)
	}
	if f.IsDefault != nil {
		m["is_default"] = *f.IsDefault
	}
	return m
}

// MaxNameLength bounds light names, counted in runes.
const MaxNameLength = 64

// Defaults applied on Create when the caller leaves the bulb state unset.
const (
	DefaultColor      = "#ffffff"
	DefaultBrightness = 100
)

var hostLabel = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)

// validateIP accepts an IPv4/IPv6 literal or an RFC 1123 hostname.
func validateIP(ip string) error {
	if ip == "" {
		return fmt.Errorf("%w: ip is required", ErrInvalidLight)
	}
	if net.ParseIP(ip) != nil {
		return nil
	}
	if len(ip) > 253 {
		return fmt.Errorf("%w: ip %q is not an address or hostname", ErrInvalidLight, ip)
	}
	for _, label := range strings.Split(strings.TrimSuffix(ip, "."), ".") {
		if !hostLabel.MatchString(label) {
			return fmt.Errorf("%w: ip %q is not an address or hostname", ErrInvalidLight, ip)
		}
	}
	return nil
}

// validateName rejects markup and overlong names. Surrounding space is trimmed.
func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if !htmlsanitize.IsPlainText(name) {
		return "", fmt.Errorf("%w: name must not contain markup", ErrInvalidLight)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", fmt.Errorf("%w: light name may have a maximum of %d characters", ErrInvalidLight, MaxNameLength)
	}
	return name, nil
}

func validateColor(hex string) (string, error) {
	c, err := color.FromHex(hex)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLight, err)
	}
	return c.Hex(), nil
}

func validateBrightness(b int) error {
	if b < 1 || b > 100 {
		return fmt.Errorf("%w: brightness must be between 1 and 100", ErrInvalidLight)
	}
	return nil
}

// Create validates and inserts a light. Unset color and brightness take the
// defaults. When the new light is the default, any previous default is
// cleared before the insert so a failed clear never leaves two defaults.
func (s *Store) Create(ctx context.Context, l models.Light) (models.Light, error) {
	var err error
	l.IP = strings.TrimSpace(l.IP)
	if err = validateIP(l.IP); err != nil {
		return models.Light{}, err
	}
	if l.Name, err = validateName(l.Name); err != nil {
		return models.Light{}, err
	}
	if l.Color == "" {
		l.Color = DefaultColor
	}
	if l.Color, err = validateColor(l.Color); err != nil {
		return models.Light{}, err
	}
	if l.Brightness == 0 {
		l.Brightness = DefaultBrightness
	}
	if err = validateBrightness(l.Brightness); err != nil {
		return models.Light{}, err
	}

	now := time.Now().UTC()
	l.ID = primitive.NewObjectID()
	l.NameCI = text.Fold(l.Name)
	l.CreatedAt = now
	l.UpdatedAt = now

	if l.IsDefault {
		// Check the ip first so a duplicate does not cost the current default.
		if _, err := s.FindOne(ctx, Filter{IP: l.IP}); err == nil {
			return models.Light{}, ErrDuplicateLight
		} else if !errors.Is(err, ErrNotFound) {
			return models.Light{}, err
		}
		if err := s.clearDefaultExcept(ctx, l.ID); err != nil {
			return models.Light{}, err
		}
	}
	if _, err := s.c.InsertOne(ctx, l); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Light{}, ErrDuplicateLight
		}
		return models.Light{}, err
	}
	return l, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Light, error) {
	var l models.Light
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err == mongo.ErrNoDocuments {
		return models.Light{}, ErrNotFound
	}
	if err != nil {
		return models.Light{}, err
	}
	return l, nil
}

// FindOne returns the first light matching f, ordered by name.
func (s *Store) FindOne(ctx context.Context, f Filter) (models.Light, error) {
	var l models.Light
	opts := options.FindOne().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	err := s.c.FindOne(ctx, f.bson(), opts).Decode(&l)
	if err == mongo.ErrNoDocuments {
		return models.Light{}, ErrNotFound
	}
	if err != nil {
		return models.Light{}, err
	}
	return l, nil
}

// Default returns the light flagged is_default.
func (s *Store) Default(ctx context.Context) (models.Light, error) {
	yes := true
	return s.FindOne(ctx, Filter{IsDefault: &yes})
}

// List returns every light matching f, ordered by name.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Light, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, f.bson(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Light{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies the non-nil fields of p and refreshes UpdatedAt. Every
// field is validated before anything is written.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p models.LightPatch) (models.Light, error) {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if p.IP != nil {
		ip := strings.TrimSpace(*p.IP)
		if err := validateIP(ip); err != nil {
			return models.Light{}, err
		}
		set["ip"] = ip
	}
	if p.Name != nil {
		name, err := validateName(*p.Name)
		if err != nil {
			return models.Light{}, err
		}
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if p.Color != nil {
		hex, err := validateColor(*p.Color)
		if err != nil {
			return models.Light{}, err
		}
		set["color"] = hex
	}
	if p.Brightness != nil {
		if err := validateBrightness(*p.Brightness); err != nil {
			return models.Light{}, err
		}
		set["brightness"] = *p.Brightness
	}
	if p.On != nil {
		set["on"] = *p.On
	}
	if p.IsDefault != nil {
		set["is_default"] = *p.IsDefault
	}

	if p.IsDefault != nil && *p.IsDefault {
		if _, err := s.GetByID(ctx, id); err != nil {
			return models.Light{}, err
		}
		if err := s.clearDefaultExcept(ctx, id); err != nil {
			return models.Light{}, err
		}
	}

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Light{}, ErrDuplicateLight
		}
		return models.Light{}, err
	}
	if res.MatchedCount == 0 {
		return models.Light{}, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// Delete removes a light by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) clearDefaultExcept(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$ne": id}, "is_default": true},
		bson.M{"$set": bson.M{"is_default": false, "updated_at": time.Now().UTC()}})
	return err
}

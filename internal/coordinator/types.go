package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/Prakashmoharana1985/O-RAN/internal/registry"
	"github.com/rs/zerolog/log"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RegisterType installs an explicitly registered, pinned type. An existing
// type with the same id takes the new schema. It reports whether the type is
// new.
func (c *Coordinator) RegisterType(ctx context.Context, id string, schema json.RawMessage) (registry.CapabilityType, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return registry.CapabilityType{}, false, fmt.Errorf("%w: type id required", registry.ErrValidation)
	}
	if err := validateSchema(id, schema); err != nil {
		return registry.CapabilityType{}, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	t := registry.CapabilityType{ID: id, Schema: schema, Pinned: true}
	created := c.types.Put(t)
	if err := c.store.SaveType(ctx, t); err != nil {
		log.Warn().Err(err).Str("type", id).Msg("type_persist_failed")
	}
	if created {
		log.Info().Str("type", id).Msg("type_registered")
		c.notifier.TypeAdded(c.subs.All(""), t)
	} else {
		log.Info().Str("type", id).Msg("type_updated")
	}
	return t, created, nil
}

// RemoveType deletes a type no producer supports. Its jobs are kept.
func (c *Coordinator) RemoveType(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.types.GetType(id)
	if err != nil {
		return err
	}
	if n := c.producers.CountForType(id); n > 0 {
		return fmt.Errorf("%w: %w: type %q supported by %d producers", registry.ErrConflict, ErrTypeInUse, id, n)
	}
	c.types.Remove(id)
	if err := c.store.DeleteType(ctx, id); err != nil {
		log.Warn().Err(err).Str("type", id).Msg("type_delete_persist_failed")
	}
	log.Info().Str("type", id).Msg("type_removed")
	c.notifier.TypeRemoved(c.subs.All(""), t)
	return nil
}

// GetType returns the type or registry.ErrNotFound.
func (c *Coordinator) GetType(id string) (registry.CapabilityType, error) {
	return c.types.GetType(id)
}

// Types lists every known type sorted by id.
func (c *Coordinator) Types() []registry.CapabilityType {
	return c.types.All()
}

// validateSchema requires a JSON Schema document that compiles.
func validateSchema(id string, schema json.RawMessage) error {
	if len(bytes.TrimSpace(schema)) == 0 || bytes.Equal(bytes.TrimSpace(schema), []byte("null")) {
		return fmt.Errorf("%w: no schema provided for type %q", registry.ErrValidation, id)
	}
	resource := "mem://types/" + url.PathEscape(id) + ".json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(resource, bytes.NewReader(schema)); err != nil {
		return fmt.Errorf("%w: schema for type %q: %v", registry.ErrValidation, id, err)
	}
	if _, err := compiler.Compile(resource); err != nil {
		return fmt.Errorf("%w: schema for type %q: %v", registry.ErrValidation, id, err)
	}
	return nil
}

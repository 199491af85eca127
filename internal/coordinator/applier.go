package coordinator

import (
	"context"
	"sort"

	"helix/internal/gateway"
	id "helix/pkg/domain"
	"helix/pkg/domerr"
	"helix/pkg/requestcontext"
)

// Apply implements the gateway's update surface: the field writes the write
// silo may propose through SecureUpdate. Unknown fields and wrong types are
// rejected before anything is touched.
//
// Supported fields: "wealth", "luck" (floats in [0,1]) and "xp_total"
// (proposed new total, subject to the monotonicity law).
func (c *Coordinator) Apply(ctx context.Context, userID id.UserID, updates gateway.Updates) ([]string, error) {
	if len(updates) == 0 {
		return nil, domerr.New(domerr.CodeInvalidInput, "no fields to update")
	}

	fields := make([]string, 0, len(updates))
	for field := range updates {
		switch field {
		case "wealth", "luck", "xp_total":
			fields = append(fields, field)
		default:
			return nil, domerr.Newf(domerr.CodeInvalidInput, "unknown field %q", field)
		}
	}
	sort.Strings(fields)

	refresh := false
	for _, field := range fields {
		switch field {
		case "wealth":
			v, err := floatField(updates, field)
			if err != nil {
				return nil, err
			}
			if err := c.dna.RecordWealth(ctx, userID, v); err != nil {
				return nil, err
			}
			refresh = true
		case "luck":
			v, err := floatField(updates, field)
			if err != nil {
				return nil, err
			}
			if err := c.dna.RecordLuck(ctx, userID, v); err != nil {
				return nil, err
			}
			refresh = true
		case "xp_total":
			total, err := intField(updates, field)
			if err != nil {
				return nil, err
			}
			grant, err := c.vault.ProposeTotal(ctx, userID, total, requestcontext.CallerSilo(ctx))
			if err != nil {
				return nil, err
			}
			if !grant.Granted {
				return nil, domerr.Newf(grant.Reason, "xp_total proposal rejected")
			}
		}
	}

	if refresh {
		if _, err := c.dna.Refresh(ctx, userID); err != nil {
			return nil, err
		}
	}
	return fields, nil
}

func floatField(updates gateway.Updates, field string) (float64, error) {
	v, ok := updates[field].(float64)
	if !ok {
		return 0, domerr.Newf(domerr.CodeInvalidInput, "field %q must be a number", field)
	}
	return v, nil
}

func intField(updates gateway.Updates, field string) (int64, error) {
	switch v := updates[field].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		if v != float64(int64(v)) {
			return 0, domerr.Newf(domerr.CodeInvalidInput, "field %q must be an integer", field)
		}
		return int64(v), nil
	}
	return 0, domerr.Newf(domerr.CodeInvalidInput, "field %q must be an integer", field)
}

package strategies

import (
	"github.com/arthur-debert/portcfg/pkg/errors"
	"github.com/arthur-debert/portcfg/pkg/formats"
	"github.com/arthur-debert/portcfg/pkg/keytree"
)

// MergeTOMLKeys adds the keys of a TOML source that the destination lacks.
func MergeTOMLKeys(ctx *Context, src, dst string) (Outcome, error) {
	return mergeKeys(formats.TOML{}, ctx, src, dst)
}

// MergeJSONKeys adds the keys of a JSON source that the destination lacks.
func MergeJSONKeys(ctx *Context, src, dst string) (Outcome, error) {
	return mergeKeys(formats.JSON{}, ctx, src, dst)
}

// MergeYAMLKeys adds the keys of a YAML source that the destination lacks.
func MergeYAMLKeys(ctx *Context, src, dst string) (Outcome, error) {
	return mergeKeys(formats.YAML{}, ctx, src, dst)
}

// mergeKeys is the shared structured merge. Values the user already has
// are never replaced; only missing keys are added, at any depth. A
// destination that does not parse, or whose root is not a mapping, is a
// conflict.
func mergeKeys(codec formats.Codec, ctx *Context, src, dst string) (Outcome, error) {
	var out Outcome

	srcData, err := readSource(ctx.FS, src)
	if err != nil {
		return out, err
	}
	srcMap, err := codec.DecodeSource(srcData)
	if err != nil {
		return out, errors.Wrapf(err, errors.ErrSourceInvalid, "Source %s invalid: %s", codec.Name(), src)
	}

	oldData, exists, err := readDestination(ctx, dst)
	if err != nil {
		return out, err
	}
	if !exists {
		data, err := codec.Render(srcData, srcMap)
		if err != nil {
			return out, errors.Wrapf(err, errors.ErrSourceInvalid, "failed to render %s", src)
		}
		return out, ctx.create(&out, dst, data, 0644)
	}

	dstMap, err := codec.Decode(oldData)
	if err != nil {
		ctx.logger().Debug().Err(err).Str("path", ctx.rel(dst)).Msg("Destination unusable")
		staged, renderErr := codec.Render(srcData, srcMap)
		if renderErr != nil {
			return out, errors.Wrapf(renderErr, errors.ErrSourceInvalid, "failed to render %s", src)
		}
		conflict, conflictErr := ctx.conflict(dst, codec.InvalidReason(err), staged)
		out.Conflict = conflict
		return out, conflictErr
	}

	if !keytree.MergeMissing(dstMap, srcMap) {
		return out, nil
	}
	data, err := codec.Encode(dstMap)
	if err != nil {
		return out, errors.Wrapf(err, errors.ErrInternal, "failed to encode %s", ctx.rel(dst))
	}
	return out, ctx.update(&out, dst, data)
}

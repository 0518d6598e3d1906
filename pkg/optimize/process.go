package optimize

import (
	"bytes"
	"path"
	"strings"

	"github.com/minifold/minifold/pkg/asset"
	"github.com/minifold/minifold/pkg/minify"
)

// processed is the finalized output of one task: the asset source ready to
// write back (shebang and banner prepended, map attached) and, when
// comments were extracted, the text destined for the comments file.
type processed struct {
	source           asset.Source
	commentsFilename string
	comments         string
}

// process finalizes a raw minification result. Each step is skipped when
// the result shape does not call for it.
func (o *Optimizer) process(name string, res *minify.Result) processed {
	code := res.Code
	comments := minify.SortedComments(res.ExtractedComments)
	bannerOn := !o.cfg.Comments.Banner.Disabled

	// A shebang is only ever split off to keep it ahead of the banner.
	var shebang []byte
	if len(comments) > 0 && bannerOn && bytes.HasPrefix(code, []byte("#!")) {
		if i := bytes.IndexByte(code, '\n'); i >= 0 {
			shebang, code = code[:i+1], code[i+1:]
		} else {
			shebang, code = code, nil
		}
	}

	var body asset.Source
	if res.Map != nil {
		body = asset.NewMapped(code, res.Map)
	} else {
		body = asset.NewRaw(code)
	}

	out := processed{source: body}
	if len(comments) == 0 {
		if shebang != nil {
			out.source = asset.NewConcat(asset.NewRaw(shebang), body)
		}
		return out
	}

	out.commentsFilename = commentsFilename(o.cfg.Comments.FilenameTemplate, name)
	out.comments = strings.Join(comments, "\n\n") + "\n"

	parts := make([]asset.Source, 0, 3)
	if shebang != nil {
		parts = append(parts, asset.NewRaw(shebang))
	}
	if bannerOn {
		text := bannerText(o.cfg.Comments.Banner, name, out.commentsFilename)
		parts = append(parts, asset.NewRawString("/*! "+text+" */\n"))
	}
	if len(parts) > 0 {
		out.source = asset.NewConcat(append(parts, body)...)
	}
	return out
}

// commentsFilename substitutes the destination template's placeholders
// using the asset name's path/query decomposition. For "dist/app.min.js?v=1"
// the parts are [file]=dist/app.min.js, [query]=?v=1, [path]=dist/,
// [base]=app.min.js, [name]=app.min, [ext]=.js.
func commentsFilename(template, name string) string {
	file, query := splitQuery(name)

	dir := ""
	base := file
	if i := strings.LastIndexByte(file, '/'); i >= 0 {
		dir, base = file[:i+1], file[i+1:]
	}
	ext := path.Ext(base)

	r := strings.NewReplacer(
		"[file]", file,
		"[query]", query,
		"[path]", dir,
		"[base]", base,
		"[name]", strings.TrimSuffix(base, ext),
		"[ext]", ext,
	)
	return r.Replace(template)
}

// bannerText resolves the banner configuration variants into the comment
// body.
func bannerText(cfg BannerConfig, name, commentsFilename string) string {
	switch {
	case cfg.Text != "":
		return cfg.Text
	case cfg.Func != nil:
		return cfg.Func(commentsFilename)
	default:
		return "For license information please see " + relativeTo(name, commentsFilename)
	}
}

// relativeTo returns target relative to the directory of name, both slash
// separated. The comments filename is derived from the asset name, so it
// sits at or below the asset's directory and plain prefix trimming holds.
func relativeTo(name, target string) string {
	file, _ := splitQuery(name)
	dir := path.Dir(file)
	if dir == "." {
		return target
	}
	return strings.TrimPrefix(target, dir+"/")
}

func splitQuery(name string) (file, query string) {
	if i := strings.IndexByte(name, '?'); i >= 0 {
		return name[:i], name[i:]
	}
	return name, ""
}

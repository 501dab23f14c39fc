package mcpserver

// FrontmatterContract describes the post file format that LLM consumers must
// follow when drafting posts.
const FrontmatterContract = `# Quill Post Format

Every post is one Markdown file directly inside the posts directory.

## File name

` + "`" + `<year>-<month>-<day>_<slug>.md` + "`" + `, for example ` + "`" + `2024-03-09_parser-combinators.md` + "`" + `.

- The date is everything before the first underscore. Month must be 1-12;
  leading zeros are optional.
- The name without ` + "`" + `.md` + "`" + ` becomes the URL: ` + "`" + `/posts/<name>.html` + "`" + `.

## Frontmatter

The file MUST start with exactly this block, lines in this order:

` + "```" + `markdown
---
title: Parser combinators by hand
description: Building a tiny parsing toolkit without dependencies
tags: [go, parsing]
---

Body text in Markdown.
` + "```" + `

## Rules

1. The first three characters of the file are ` + "`" + `---` + "`" + `.
2. ` + "`" + `title` + "`" + `, ` + "`" + `description` + "`" + ` and ` + "`" + `tags` + "`" + ` are required, in that order,
   keys in lower case. Everything after the first colon is the value.
3. Tags are written ` + "`" + `[a, b, c]` + "`" + `; ` + "`" + `[]` + "`" + ` means no tags. Order and duplicates are kept.
4. Extra lines after ` + "`" + `tags` + "`" + ` are ignored.
5. The body follows the closing ` + "`" + `---` + "`" + `. Fenced code blocks with a language are
   syntax highlighted; an image title becomes a caption:
   ` + "`" + `![alt](/static/img/x.png "Caption")` + "`" + `.
6. Upload images with the ` + "`" + `add_static_asset` + "`" + ` tool and paste the returned Markdown.
7. Check a draft with ` + "`" + `validate_post` + "`" + ` before calling ` + "`" + `create_post` + "`" + `.
`

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import "errors"

var (
	// ErrSyntax indicates the source unit could not be parsed into a
	// module model. Fatal for the file, non-fatal for a batch: callers
	// catch it with errors.Is and continue with sibling files.
	ErrSyntax = errors.New("syntax analysis failed")

	// ErrUnsupportedConstruct indicates a recognized-but-unhandled
	// declaration shape. Only the affected symbol is skipped; the rest of
	// the file continues. Skips surface in ModuleModel.Skipped.
	ErrUnsupportedConstruct = errors.New("unsupported construct")

	// ErrFileTooLarge indicates the source exceeds the analyzer's size
	// limit. Wraps ErrSyntax so batch handling stays uniform.
	ErrFileTooLarge = errors.New("file exceeds maximum size")

	// ErrInvalidContent indicates the source is not valid UTF-8.
	ErrInvalidContent = errors.New("content is not valid UTF-8")
)

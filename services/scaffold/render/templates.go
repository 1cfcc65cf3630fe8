// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package render

// Test body templates. Rendering is pure substitution: every field is
// precomputed, templates only iterate and join. Identical inputs yield
// byte-identical output, which supports snapshot testing.

// happyTemplate renders the direct happy-path test for a candidate,
// including patch decorators and return-value wiring for attached mocks.
const happyTemplate = `{{range .Patches}}@patch("{{.}}")
{{end}}def {{.TestName}}_happy_path({{join .MockArgs ", "}}):
    """{{.Doc}}"""
{{- range .MockSetup}}
    {{.}}
{{- end}}
{{- range .Setup}}
    {{.}}
{{- end}}
    result = {{.Call}}
    {{.Assert}}
`

// constructorTemplate renders the direct test for __init__ candidates.
const constructorTemplate = `def {{.TestName}}_happy_path():
    """{{.Doc}}"""
    instance = {{.Call}}
    assert instance is not None
`

// parametrizeTemplate renders the non-error case table for one parameter.
const parametrizeTemplate = `@pytest.mark.parametrize("{{.ParamList}}", [{{join .Literals ", "}}], ids=[{{join .IDs ", "}}])
def {{.TestName}}({{.ParamArgs}}):
    """{{.Doc}}"""
{{- range .Setup}}
    {{.}}
{{- end}}
    result = {{.Call}}
    {{.Assert}}
`

// raisesTemplate renders the error-tagged case table for one parameter.
const raisesTemplate = `@pytest.mark.parametrize("{{.ParamList}}", [{{join .Literals ", "}}], ids=[{{join .IDs ", "}}])
def {{.TestName}}({{.ParamArgs}}):
    """{{.Doc}}"""
{{- range .Setup}}
    {{.}}
{{- end}}
    with pytest.raises({{.Raises}}):
        {{.Call}}
`

// fixtureTemplate renders one file-level fixture definition.
const fixtureTemplate = `@pytest.fixture(scope="{{.Scope}}")
def {{.Name}}():
    """{{.Docstring}}"""
{{- range .Setup}}
    {{.}}
{{- end}}
{{- range .Teardown}}
    {{.}}
{{- end}}
`

/*
Package config loads and validates sectionctl configuration.

A configuration file is CUE, JSON, or YAML. It is unified with the embedded
#Config schema, which fills defaults and rejects anything unknown, and then
decoded into a Config. The Config builds the section store, the optional
device port, the retry policy, and the log handler the rest of the program
uses.

# Secrets

CUE input may take a field's value from the environment with an @env
attribute:

	section: {
		backend: "github"
		github: {
			owner: "jmgilman"
			repo:  "notes"
			token: string @env(name="GITHUB_TOKEN")
		}
	}

A missing variable leaves the field unset, so a required field fails
validation. A default may be given with @env(name="X", default="y").
Arguments are comma separated key=value pairs; values may be left unquoted
when they contain no comma, quote, or equals sign, as in @env(name=X,
default=y). Any other text in the attribute is an error.

With WithSecrets, @secret(id="name", key="field") reads the value from AWS
Secrets Manager. key selects a field of a JSON secret and may be omitted.
Secret failures are translated under the resolveSecret operation.

# Errors

Load failures are TranslatedErrors: a missing file is KindNotFound, an
unreadable file is KindPermissionDenied, and a file that does not compile or
violates the schema is KindInvalidArgument with an "issues" context entry
listing every violation by path.
*/
package config

/*
Package lang bundles example grammars for the relex engine.

The grammars here double as realistic fixtures for the engine's tests:
Nonsense is a small didactic language exercising default actions and
nested contexts; Json is a complete JSON tokenizer with a
transform producing plain Go values.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lang

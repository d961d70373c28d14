/*
Package executable reads the loadable segments out of 64-bit ELF executables.

Only as much of the format as the analyzer needs is understood: the file header
is validated, the program header table is walked in order, and the file-backed
bytes of every PT_LOAD entry are read into memory. Sections, symbols and dynamic
linking information are ignored. The bytes of the header and program headers are
decoded in the byte order the file declares, so big-endian images work too.

The ELF specification can be found here: https://refspecs.linuxfoundation.org/elf/gabi4+/contents.html
*/

package executable

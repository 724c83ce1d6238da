/*
Package tr implements a reader for the .tr wall and floor texture files used
by Ultima Underworld.

Every texture in a file is square and the same size. The file starts with a
format byte, the texture size, a little-endian 16-bit texture count and a
32-bit offset for each texture. Each texture is stored as uncompressed 8-bit
palette indices, row by row.
*/
package tr

const headerSize = 4

/*
Package sstable contains an SSTable implementation which stores arbitrary,
caller-sorted byte keys and values in compressed blocks.

Data Structure Documentation

Table

A table contains a series of compressed blocks followed by a footer
and a fixed-width footer pointer.

    Table layout:
    +---------+---------+---------+--------+----------------------------------+
    | block 1 |   ...   | block n | footer | footer offset (8 bytes, big-end) |
    +---------+---------+---------+--------+----------------------------------+

The footer is a CBOR encoded map holding the list of bookends, one per block.
A bookend is the end offset of a block within the file, block i therefore
spans the bytes between bookend i-1 (or zero) and bookend i.

Block

A block is compressed as a whole. Uncompressed, it comprises of a series of
entries, followed by an entry index and the number of entries.

    Block layout:
    +---------+---------+---------+---------------------+-----+---------------------+-----------------------------+
    | entry 1 |   ...   | entry n | offset 1 (4 bytes)  | ... | offset n (4 bytes)  | number of entries (4 bytes) |
    +---------+---------+---------+---------------------+-----+---------------------+-----------------------------+

All fixed-width integers are big-endian.

Entry

    +----------------------+------------------------+-----------------+-------------------+
    | key length (varint)  |  value length (varint) |  key (varlen)   |  value (varlen)   |
    +----------------------+------------------------+-----------------+-------------------+

Varint

Lengths are encoded as prefix varints of 1 to 5 bytes. The number of leading
one bits in the first byte gives the number of continuation bytes, the
remaining bits of the first byte hold the lowest bits of the value, the
continuation bytes hold the rest, least significant byte first.

    0xxxxxxx                                       7 bits
    10xxxxxx xxxxxxxx                             14 bits
    110xxxxx xxxxxxxx xxxxxxxx                    21 bits
    1110xxxx xxxxxxxx xxxxxxxx xxxxxxxx           28 bits
    11110xxx xxxxxxxx xxxxxxxx xxxxxxxx xxxxxxxx  32 bits
*/
package sstable
